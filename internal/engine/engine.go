// Package engine implements the publish/sync core: bulk collection
// synchronization with diff-and-prune, single-resource publish and
// unpublish, and content-type refresh.
//
// A bulk run builds a snapshot index of the target container first, then
// publishes resources with a bounded worker pool, and prunes obsolete
// objects only after all workers have finished. Per-object failures are
// collected and reported; they never abort the remaining batch.
package engine

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/flownative/go-blobsync/blobstore"
	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/resolver"
	"github.com/flownative/go-blobsync/internal/transcode"
	"github.com/flownative/go-blobsync/synctypes"
)

// DefaultConcurrency bounds the publish worker pool when the caller does
// not configure one.
const DefaultConcurrency = 5

// Config assembles an engine.
type Config struct {
	Store         blobstore.Store
	ContainerName string
	KeyPrefix     string
	CacheControl  string
	Concurrency   int
	Transcoder    *transcode.Transcoder
	Logger        *slog.Logger
}

// Engine executes publish, unpublish and refresh operations against one
// target container.
type Engine struct {
	store        blobstore.Store
	container    string
	keyPrefix    string
	cacheControl string
	concurrency  int
	transcoder   *transcode.Transcoder
	logger       *slog.Logger
}

// New creates an engine from the given configuration.
func New(cfg Config) *Engine {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		store:        cfg.Store,
		container:    cfg.ContainerName,
		keyPrefix:    cfg.KeyPrefix,
		cacheControl: cfg.CacheControl,
		concurrency:  concurrency,
		transcoder:   cfg.Transcoder,
		logger:       logger,
	}
}

// publishOutcome classifies how a single resource was published.
type publishOutcome int

const (
	outcomeUploaded publishOutcome = iota
	outcomeCopied
	outcomeSkipped
)

// PublishCollection synchronizes all resources of a collection into the
// target container and prunes objects no longer referenced.
//
// Per-object failures are aggregated into the result's Errors list and do
// not abort the run. Listing failures during index construction, an
// enumeration failure of the source, and prune failures are fatal.
func (e *Engine) PublishCollection(ctx context.Context, collection synctypes.Collection) (*synctypes.PublishResult, error) {
	native, err := e.nativeSource(collection)
	if err != nil {
		return nil, err
	}

	// The index must be complete before any create or delete work begins.
	index, err := e.buildIndex(ctx)
	if err != nil {
		return nil, err
	}

	obsolete := mapset.NewSet[string]()
	for key := range index {
		obsolete.Add(key)
	}

	result := &synctypes.PublishResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	enumErr := collection.Source.EachObject(gctx, collection.Name, func(resource synctypes.Resource) error {
		key := resolver.ObjectKey(e.keyPrefix, resource)
		obsolete.Remove(key)

		_, existing := index[key]
		g.Go(func() error {
			outcome, publishErr := e.publishOne(gctx, resource, key, native, existing)
			mu.Lock()
			defer mu.Unlock()
			if publishErr != nil {
				e.logger.Warn("publishing resource failed",
					"collection", collection.Name, "key", key, "error", publishErr)
				result.Errors = append(result.Errors, synctypes.PublishError{Key: key, Err: publishErr})
				return nil
			}
			switch outcome {
			case outcomeUploaded:
				result.Uploaded++
			case outcomeCopied:
				result.Copied++
			case outcomeSkipped:
				result.Skipped++
			}
			return nil
		})

		return gctx.Err()
	})

	// All creates and retains must complete before the obsolete set is
	// finalized and pruned.
	waitErr := g.Wait()
	if enumErr != nil {
		return result, syncerrors.NewError("publishCollection", enumErr).
			WithContainer(e.container).
			WithMessage("enumerating collection " + collection.Name)
	}
	if waitErr != nil {
		return result, syncerrors.NewError("publishCollection", waitErr).WithContainer(e.container)
	}

	pruned, err := e.prune(ctx, obsolete)
	result.Pruned = pruned
	if err != nil {
		return result, err
	}

	e.logger.Info("collection published",
		"collection", collection.Name,
		"uploaded", result.Uploaded, "copied", result.Copied,
		"skipped", result.Skipped, "pruned", result.Pruned,
		"failed", len(result.Errors))
	return result, nil
}

// PublishResource publishes a single resource, typically while it is being
// written to the source. It never touches the existing-object index and
// never prunes.
func (e *Engine) PublishResource(ctx context.Context, resource synctypes.Resource, collection synctypes.Collection) error {
	native, err := e.nativeSource(collection)
	if err != nil {
		return err
	}

	key := resolver.ObjectKey(e.keyPrefix, resource)
	if _, err := e.publishOne(ctx, resource, key, native, false); err != nil {
		e.logger.Warn("publishing resource failed",
			"collection", collection.Name, "key", key, "error", err)
		return err
	}
	return nil
}

// UnpublishResource removes the target object of a resource. A missing
// object is a successful no-op.
func (e *Engine) UnpublishResource(ctx context.Context, resource synctypes.Resource) error {
	key := resolver.ObjectKey(e.keyPrefix, resource)
	err := e.store.Delete(ctx, e.container, key)
	if err != nil && !syncerrors.IsObjectNotFound(err) {
		return err
	}
	return nil
}

// RefreshContentTypes re-applies the declared content type to the published
// objects of a collection, in ascending content-hash order. Resources with
// a hash lexically at or below startAfter are skipped, making long refresh
// runs resumable. Returns the number of refreshed objects.
func (e *Engine) RefreshContentTypes(ctx context.Context, collection synctypes.Collection, startAfter string) (int, error) {
	var resources []synctypes.Resource
	err := collection.Source.EachObject(ctx, collection.Name, func(resource synctypes.Resource) error {
		if resource.SHA1 > startAfter {
			resources = append(resources, resource)
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, syncerrors.NewError("refreshContentTypes", err).WithContainer(e.container)
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].SHA1 < resources[j].SHA1
	})

	refreshed := 0
	for _, resource := range resources {
		key := resolver.ObjectKey(e.keyPrefix, resource)
		if err := e.store.SetProperties(ctx, e.container, key, resource.MediaType); err != nil {
			if syncerrors.IsObjectNotFound(err) {
				e.logger.Warn("skipping unpublished resource", "key", key)
				continue
			}
			return refreshed, err
		}
		refreshed++
		e.logger.Debug("content type refreshed", "key", key, "sha1", resource.SHA1)
	}
	return refreshed, nil
}

// Check performs a connectivity self-test by fetching a single listing page
// of the target container.
func (e *Engine) Check(ctx context.Context) error {
	if _, err := e.store.List(ctx, e.container, e.keyPrefix, ""); err != nil {
		return syncerrors.NewError("check", err).WithContainer(e.container)
	}
	return nil
}

// nativeSource returns the collection's source as NativeStorage when it
// lives on the same backend as the target, and enforces the same-container
// guard before any network call.
func (e *Engine) nativeSource(collection synctypes.Collection) (synctypes.NativeStorage, error) {
	native, ok := collection.Source.(synctypes.NativeStorage)
	if !ok {
		return nil, nil
	}
	if native.Store() != e.store {
		// Different backend instance, server-side copy cannot span it.
		return nil, nil
	}
	if native.ContainerName() == e.container {
		return nil, syncerrors.NewError("publish", syncerrors.ErrSameContainer).
			WithContainer(e.container)
	}
	return native, nil
}

// buildIndex lists the target container under the key prefix, following
// continuation tokens until exhausted. The index is valid only for the
// duration of one synchronization run.
func (e *Engine) buildIndex(ctx context.Context) (map[string]struct{}, error) {
	index := make(map[string]struct{})
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := e.store.List(ctx, e.container, e.keyPrefix, token)
		if err != nil {
			return nil, err
		}
		for _, key := range page.Keys {
			index[key] = struct{}{}
		}
		if page.NextContinuationToken == "" {
			return index, nil
		}
		token = page.NextContinuationToken
	}
}

// publishOne publishes a single resource at the given target key.
//
// Compressible media types never take the copy path: server-side copy
// cannot transcode, so they always stream through the compressor.
func (e *Engine) publishOne(ctx context.Context, resource synctypes.Resource, key string, native synctypes.NativeStorage, existing bool) (publishOutcome, error) {
	compress := e.transcoder != nil && e.transcoder.ShouldCompress(resource.MediaType)

	if native != nil && !compress {
		if existing {
			// The key embeds the content hash, presence proves content
			// equality.
			return outcomeSkipped, nil
		}
		if err := e.store.Copy(ctx, e.container, key, native.ContainerName(), native.ObjectKey(resource)); err != nil {
			return 0, err
		}
		// Copy does not carry the declared content type over.
		if err := e.store.SetProperties(ctx, e.container, key, resource.MediaType); err != nil {
			return 0, err
		}
		return outcomeCopied, nil
	}

	if err := e.streamPublish(ctx, resource, key, compress); err != nil {
		return 0, err
	}
	return outcomeUploaded, nil
}

// streamPublish uploads the resource's content, transcoding it first when
// eligible. The source stream and any spool are released before returning.
func (e *Engine) streamPublish(ctx context.Context, resource synctypes.Resource, key string, compress bool) error {
	if resource.Open == nil {
		return syncerrors.NewObjectError("publish", e.container, key,
			stderrors.New("resource has no content stream"))
	}

	source, err := resource.Open(ctx)
	if err != nil {
		return syncerrors.NewObjectError("publish", e.container, key, err)
	}
	defer source.Close()

	opts := blobstore.PutOptions{
		ContentType:   resource.MediaType,
		CacheControl:  e.cacheControl,
		ContentLength: -1,
	}

	if !compress {
		if resource.Size >= 0 {
			opts.ContentLength = resource.Size
		}
		return e.store.Put(ctx, e.container, key, source, opts)
	}

	spool, err := e.transcoder.Compress(ctx, source)
	if err != nil {
		// Hard failure, never upload a partially consumed stream.
		return err
	}
	defer spool.Close()

	payload, err := spool.Reader()
	if err != nil {
		return syncerrors.NewObjectError("publish", e.container, key, err)
	}
	opts.ContentEncoding = "gzip"
	opts.ContentLength = spool.Size()
	return e.store.Put(ctx, e.container, key, payload, opts)
}

// prune deletes every key left in the obsolete set. Missing keys delete as
// success; any other failure is fatal.
func (e *Engine) prune(ctx context.Context, obsolete mapset.Set[string]) (int, error) {
	keys := obsolete.ToSlice()
	if len(keys) == 0 {
		return 0, nil
	}
	sort.Strings(keys)

	if err := e.store.DeleteMany(ctx, e.container, keys); err != nil {
		return 0, syncerrors.NewError("prune", err).WithContainer(e.container)
	}
	e.logger.Debug("obsolete objects pruned", "count", len(keys))
	return len(keys), nil
}
