package blobsync

import (
	"context"

	"github.com/flownative/go-blobsync/synctypes"
)

// PublishCollection synchronizes all resources of a collection into the
// target container.
//
// The run is diff-based: objects already present at their content-addressed
// key are skipped, missing ones are copied server-side or streamed, and
// objects no longer referenced by the collection are pruned at the end.
//
// Returns a result summarizing the run. Per-object failures are collected
// in the result's Errors list and do not abort the run; the returned error
// is non-nil only for fatal failures (configuration, source-equals-target
// guard, listing, enumeration, prune).
func (t *Target) PublishCollection(ctx context.Context, collection synctypes.Collection) (*synctypes.PublishResult, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	return t.engine.PublishCollection(ctx, collection)
}

// PublishResource publishes a single resource without touching the rest of
// the container. No existing-object index is consulted and nothing is
// pruned. This is the path to call when a resource is written while the
// system is live.
func (t *Target) PublishResource(ctx context.Context, resource synctypes.Resource, collection synctypes.Collection) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateResource(resource); err != nil {
		return err
	}
	return t.engine.PublishResource(ctx, resource, collection)
}

// UnpublishResource removes the target object of a resource. Unpublishing
// a resource that is not published is a successful no-op.
func (t *Target) UnpublishResource(ctx context.Context, resource synctypes.Resource) error {
	if err := validateResource(resource); err != nil {
		return err
	}
	return t.engine.UnpublishResource(ctx, resource)
}

// RefreshContentTypes re-applies the declared content type to the published
// objects of a collection, in ascending content-hash order.
//
// Long runs can be resumed: pass the last refreshed hash as startAfter and
// only resources with a lexically greater hash are processed. Returns the
// number of refreshed objects.
func (t *Target) RefreshContentTypes(ctx context.Context, collection synctypes.Collection, startAfter string) (int, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	return t.engine.RefreshContentTypes(ctx, collection, startAfter)
}
