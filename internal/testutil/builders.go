package testutil

import (
	"context"
	"io"
	"strings"

	"github.com/flownative/go-blobsync/blobstore"
	"github.com/flownative/go-blobsync/synctypes"
)

// NewResource builds a resource whose content stream is backed by the given
// string.
func NewResource(sha1, filename, mediaType, content string) synctypes.Resource {
	return synctypes.Resource{
		SHA1:      sha1,
		Filename:  filename,
		MediaType: mediaType,
		Size:      int64(len(content)),
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// StaticSource is a Source backed by a fixed resource slice.
type StaticSource struct {
	Resources []synctypes.Resource
}

var _ synctypes.Source = (*StaticSource)(nil)

// EachObject implements synctypes.Source.
func (s *StaticSource) EachObject(ctx context.Context, collection string, fn func(synctypes.Resource) error) error {
	for _, resource := range s.Resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		resource.Collection = collection
		if err := fn(resource); err != nil {
			return err
		}
	}
	return nil
}

// NativeSource is a StaticSource that also reports itself as living on an
// object-store backend, with content addressed by keyPrefix + sha1.
type NativeSource struct {
	StaticSource
	Backend   blobstore.Store
	Container string
	KeyPrefix string
}

var _ synctypes.NativeStorage = (*NativeSource)(nil)

// Store implements synctypes.NativeStorage.
func (s *NativeSource) Store() blobstore.Store {
	return s.Backend
}

// ContainerName implements synctypes.NativeStorage.
func (s *NativeSource) ContainerName() string {
	return s.Container
}

// ObjectKey implements synctypes.NativeStorage.
func (s *NativeSource) ObjectKey(resource synctypes.Resource) string {
	return s.KeyPrefix + resource.SHA1
}
