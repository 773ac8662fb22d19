// Package blobstore defines the object-store capability consumed by the
// publication engine, together with an S3-backed implementation.
//
// The Store interface is deliberately small: put, get, delete, server-side
// copy, property updates and paginated listing. Anything that can satisfy it
// can act as a publication target backend.
package blobstore

import (
	"context"
	"io"
)

// PutOptions carries the object metadata applied during a Put.
type PutOptions struct {
	// ContentType is the declared MIME type of the object
	ContentType string

	// ContentEncoding is set to "gzip" for transcoded payloads, empty otherwise
	ContentEncoding string

	// CacheControl is an optional Cache-Control header value
	CacheControl string

	// ContentLength is the payload size in bytes, or -1 when unknown
	ContentLength int64
}

// ListPage is one page of a paginated container listing.
type ListPage struct {
	// Keys are the object keys on this page
	Keys []string

	// NextContinuationToken is non-empty when more pages follow
	NextContinuationToken string
}

// Store is the object-store capability.
//
// Implementations must report missing objects on Get and Delete via
// errors.ErrObjectNotFound so callers can treat absence as a signal rather
// than a failure.
type Store interface {
	// Put creates or overwrites the object at key with the given content.
	Put(ctx context.Context, container, key string, content io.Reader, opts PutOptions) error

	// Get returns a reader for the object's content. The caller owns the
	// returned reader and must close it.
	Get(ctx context.Context, container, key string) (io.ReadCloser, error)

	// Delete removes a single object. Deleting a missing object returns
	// errors.ErrObjectNotFound.
	Delete(ctx context.Context, container, key string) error

	// DeleteMany removes a batch of objects. Missing keys are ignored.
	DeleteMany(ctx context.Context, container string, keys []string) error

	// Copy duplicates an object server-side, without a content round-trip.
	Copy(ctx context.Context, dstContainer, dstKey, srcContainer, srcKey string) error

	// SetProperties re-applies the declared content type of an existing object.
	SetProperties(ctx context.Context, container, key, contentType string) error

	// List returns one page of object keys under prefix. Pass the previous
	// page's NextContinuationToken to continue, or "" for the first page.
	List(ctx context.Context, container, prefix, continuationToken string) (*ListPage, error)

	// PublicEndpoint returns the backend's native public base URL,
	// ending in "/". Container and key are appended path-style.
	PublicEndpoint() string
}
