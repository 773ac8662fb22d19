// Package synctypes contains the shared types of the publication engine:
// resource descriptors, collection wiring, source capabilities, option
// configuration structs and publish results.
package synctypes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/flownative/go-blobsync/blobstore"
)

// Resource describes one content-addressed item to publish.
//
// Persistent resources are identified by their content hash; static items
// carry an explicit RelativePublicationPath instead.
type Resource struct {
	// SHA1 is the lowercase hex content hash (40 characters)
	SHA1 string

	// Filename is the original file name, used as the last key segment
	Filename string

	// MediaType is the declared MIME type
	MediaType string

	// Size is the content size in bytes, or -1 when unknown
	Size int64

	// Collection is the name of the owning collection
	Collection string

	// RelativePublicationPath overrides the hash-derived publication path
	// for static items. It must end with "/" when non-empty.
	RelativePublicationPath string

	// Open returns the resource's content stream. The caller owns the
	// returned reader and must close it.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Source yields the resources belonging to a named collection.
type Source interface {
	// EachObject calls fn for every resource of the collection, in
	// unspecified order. Iteration stops on the first error returned by fn.
	EachObject(ctx context.Context, collection string, fn func(Resource) error) error
}

// NativeStorage is a Source whose resources already live in an object-store
// container, addressable for server-side copying.
type NativeStorage interface {
	Source

	// Store returns the backend holding the source objects.
	Store() blobstore.Store

	// ContainerName returns the container holding the source objects.
	ContainerName() string

	// ObjectKey returns the backend-native key of a resource's content
	// inside the source container.
	ObjectKey(resource Resource) string
}

// Collection pairs a named resource set with the source it is read from.
type Collection struct {
	// Name identifies the collection, e.g. "persistent"
	Name string

	// Source yields the collection's resources
	Source Source
}

// BaseURIContext is the configuration bag handed to a custom base-URI
// provider at target construction.
type BaseURIContext struct {
	// TargetName identifies the target being constructed
	TargetName string

	// ContainerName is the target container
	ContainerName string

	// KeyPrefix is the configured key prefix
	KeyPrefix string

	// CurrentBaseURI is the base URI the target would use without the provider
	CurrentBaseURI string

	// SigningEnabled and SignatureLifetime mirror the signing configuration.
	// No signing behavior is derived from them.
	SigningEnabled    bool
	SignatureLifetime time.Duration
}

// BaseURIProvider computes the effective base URI for a target. It is
// invoked exactly once, during target construction.
type BaseURIProvider func(ctx context.Context, info BaseURIContext) (string, error)

// TargetConfig holds the target configuration assembled from functional
// options.
type TargetConfig struct {
	// Name identifies the target in logs and provider callbacks
	Name string

	// ContainerName is the target container. Required.
	ContainerName string

	// KeyPrefix is prepended to every object key
	KeyPrefix string

	// BaseURI overrides the backend's native public endpoint
	BaseURI string

	// Pattern is an explicit URI template. When empty, a default pattern
	// is selected from BaseURI presence.
	Pattern string

	// GzipLevel is the compression level, 0 (store only) through 9
	GzipLevel int

	// GzipMediaTypes is the set of media types eligible for compression
	GzipMediaTypes []string

	// CacheControl is applied to every published object when non-empty
	CacheControl string

	// Concurrency bounds the publish worker pool
	Concurrency int

	// SigningEnabled and SignatureLifetime are accepted configuration
	// surface without attached behavior.
	SigningEnabled    bool
	SignatureLifetime time.Duration

	// BaseURIProvider, when set, is resolved once at construction and its
	// result replaces BaseURI.
	BaseURIProvider BaseURIProvider

	// Logger receives progress and per-object warnings. Nil disables logging.
	Logger *slog.Logger
}

// Option configures a publication target.
type Option func(*TargetConfig)

// PublishError records a single non-fatal per-object failure during a bulk
// synchronization.
type PublishError struct {
	// Key is the target object key that failed
	Key string

	// Err is the underlying failure
	Err error
}

// Error implements the error interface.
func (e PublishError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e PublishError) Unwrap() error {
	return e.Err
}

// PublishResult summarizes a bulk synchronization run.
type PublishResult struct {
	// Uploaded counts objects published via the generic stream path
	Uploaded int

	// Copied counts objects published via server-side copy
	Copied int

	// Skipped counts objects already present at their target key
	Skipped int

	// Pruned counts obsolete objects deleted at the end of the run
	Pruned int

	// Errors collects per-object failures. The run continues past them.
	Errors []PublishError
}

// Ok reports whether the run completed without per-object failures.
func (r *PublishResult) Ok() bool {
	return len(r.Errors) == 0
}
