package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/flownative/go-blobsync/blobstore"
	syncerrors "github.com/flownative/go-blobsync/errors"
)

// MemObject is one object held by a MemStore.
type MemObject struct {
	Data            []byte
	ContentType     string
	ContentEncoding string
	CacheControl    string
}

// MemStore is a thread-safe in-memory implementation of blobstore.Store.
// It counts backend calls so tests can assert on network activity, and its
// listing page size is configurable to exercise pagination.
type MemStore struct {
	mu       sync.Mutex
	objects  map[string]map[string]MemObject
	endpoint string

	// PageSize bounds listing pages. Zero means everything on one page.
	PageSize int

	// Calls counts every backend operation performed.
	Calls int
}

var _ blobstore.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store with the given public
// endpoint, e.g. "https://storage.example.com/".
func NewMemStore(endpoint string) *MemStore {
	return &MemStore{
		objects:  make(map[string]map[string]MemObject),
		endpoint: endpoint,
	}
}

// Seed places an object directly into a container, bypassing call counting.
func (m *MemStore) Seed(container, key string, obj MemObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[container] == nil {
		m.objects[container] = make(map[string]MemObject)
	}
	m.objects[container][key] = obj
}

// Object returns a stored object and whether it exists.
func (m *MemStore) Object(container, key string) (MemObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[container][key]
	return obj, ok
}

// Keys returns the sorted keys of a container.
func (m *MemStore) Keys(container string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects[container]))
	for key := range m.objects[container] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Put implements blobstore.Store.
func (m *MemStore) Put(ctx context.Context, container, key string, content io.Reader, opts blobstore.PutOptions) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return syncerrors.NewObjectError("put", container, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.objects[container] == nil {
		m.objects[container] = make(map[string]MemObject)
	}
	m.objects[container][key] = MemObject{
		Data:            data,
		ContentType:     opts.ContentType,
		ContentEncoding: opts.ContentEncoding,
		CacheControl:    opts.CacheControl,
	}
	return nil
}

// Get implements blobstore.Store.
func (m *MemStore) Get(ctx context.Context, container, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	obj, ok := m.objects[container][key]
	if !ok {
		return nil, syncerrors.NewObjectError("get", container, key, syncerrors.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

// Delete implements blobstore.Store.
func (m *MemStore) Delete(ctx context.Context, container, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.objects[container][key]; !ok {
		return syncerrors.NewObjectError("delete", container, key, syncerrors.ErrObjectNotFound)
	}
	delete(m.objects[container], key)
	return nil
}

// DeleteMany implements blobstore.Store. Missing keys are ignored.
func (m *MemStore) DeleteMany(ctx context.Context, container string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	for _, key := range keys {
		delete(m.objects[container], key)
	}
	return nil
}

// Copy implements blobstore.Store.
func (m *MemStore) Copy(ctx context.Context, dstContainer, dstKey, srcContainer, srcKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	src, ok := m.objects[srcContainer][srcKey]
	if !ok {
		return syncerrors.NewObjectError("copy", srcContainer, srcKey, syncerrors.ErrObjectNotFound)
	}
	if m.objects[dstContainer] == nil {
		m.objects[dstContainer] = make(map[string]MemObject)
	}
	m.objects[dstContainer][dstKey] = MemObject{
		Data:            append([]byte(nil), src.Data...),
		ContentType:     src.ContentType,
		ContentEncoding: src.ContentEncoding,
		CacheControl:    src.CacheControl,
	}
	return nil
}

// SetProperties implements blobstore.Store.
func (m *MemStore) SetProperties(ctx context.Context, container, key, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	obj, ok := m.objects[container][key]
	if !ok {
		return syncerrors.NewObjectError("setProperties", container, key, syncerrors.ErrObjectNotFound)
	}
	obj.ContentType = contentType
	m.objects[container][key] = obj
	return nil
}

// List implements blobstore.Store with offset-based continuation tokens.
func (m *MemStore) List(ctx context.Context, container, prefix, continuationToken string) (*blobstore.ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	var keys []string
	for key := range m.objects[container] {
		if prefix == "" || len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if continuationToken != "" {
		// Tokens are the last key of the previous page.
		start = sort.SearchStrings(keys, continuationToken)
		if start < len(keys) && keys[start] == continuationToken {
			start++
		}
	}

	end := len(keys)
	if m.PageSize > 0 && start+m.PageSize < end {
		end = start + m.PageSize
	}

	page := &blobstore.ListPage{Keys: keys[start:end]}
	if end < len(keys) {
		page.NextContinuationToken = keys[end-1]
	}
	return page, nil
}

// PublicEndpoint implements blobstore.Store.
func (m *MemStore) PublicEndpoint() string {
	return m.endpoint
}
