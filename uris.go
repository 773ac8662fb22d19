package blobsync

import (
	"github.com/flownative/go-blobsync/internal/resolver"
	"github.com/flownative/go-blobsync/synctypes"
)

// PublicPersistentResourceURI returns the public URI of a persistent
// resource.
//
// The URI is rendered from the configured pattern, or from a default
// selected by the target configuration: without a pattern and without a
// base URI the backend's native endpoint is used and the container appears
// in the path; with a base URI but no pattern the base URI is assumed to
// point at the container. Every path value is percent-encoded per segment.
func (t *Target) PublicPersistentResourceURI(resource synctypes.Resource) string {
	return resolver.PersistentResourceURI(t.resolver, resource)
}

// PublicStaticResourceURI returns the public URI of a static item at the
// given path below the key prefix. Static URIs always use the backend's
// native endpoint, regardless of pattern or base URI configuration.
func (t *Target) PublicStaticResourceURI(relativePath string) string {
	return resolver.StaticResourceURI(t.resolver, relativePath)
}

// RelativePublicationPath returns the resource's path below the key prefix:
// the explicit relative path plus filename for static items, or
// "sha1/filename" for persistent resources.
func (t *Target) RelativePublicationPath(resource synctypes.Resource) string {
	return resolver.RelativePublicationPath(resource)
}

// TargetObjectKey returns the fully qualified object key a resource
// publishes to.
func (t *Target) TargetObjectKey(resource synctypes.Resource) string {
	return resolver.ObjectKey(t.config.KeyPrefix, resource)
}
