package source

import (
	"context"
	"io"

	"github.com/flownative/go-blobsync/blobstore"
	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/validation"
	"github.com/flownative/go-blobsync/synctypes"
)

// BucketStorage yields resources that already live in an object-store
// container: content objects are addressed by keyPrefix + sha1, and the
// manifest is itself an object at keyPrefix + "resources.yaml".
//
// It implements synctypes.NativeStorage, so a target on the same backend
// publishes from it with server-side copies instead of content round-trips.
type BucketStorage struct {
	store     blobstore.Store
	container string
	keyPrefix string
}

var _ synctypes.NativeStorage = (*BucketStorage)(nil)

// NewBucketStorage creates a bucket-backed storage.
func NewBucketStorage(store blobstore.Store, container, keyPrefix string) (*BucketStorage, error) {
	if store == nil {
		return nil, syncerrors.NewError("newBucketStorage", syncerrors.ErrConfiguration).
			WithMessage("store must not be nil")
	}
	if err := validation.ValidateContainerName(container); err != nil {
		return nil, err
	}
	return &BucketStorage{
		store:     store,
		container: container,
		keyPrefix: keyPrefix,
	}, nil
}

// EachObject implements synctypes.Source.
func (b *BucketStorage) EachObject(ctx context.Context, collection string, fn func(synctypes.Resource) error) error {
	manifestReader, err := b.store.Get(ctx, b.container, b.keyPrefix+ManifestFilename)
	if err != nil {
		return syncerrors.NewError("eachObject", err).
			WithContainer(b.container).
			WithMessage("fetching manifest")
	}
	data, err := io.ReadAll(manifestReader)
	manifestReader.Close()
	if err != nil {
		return syncerrors.NewError("eachObject", err).
			WithContainer(b.container).
			WithMessage("reading manifest")
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return err
	}

	entries, ok := manifest.Collections[collection]
	if !ok {
		return syncerrors.NewError("eachObject", syncerrors.ErrInvalidInput).
			WithContainer(b.container).
			WithMessage("unknown collection " + collection)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		mediaType := entry.MediaType
		if mediaType == "" {
			// Bucket content is not sniffed, that would defeat the
			// copy-without-round-trip point of this storage.
			mediaType = "application/octet-stream"
		}

		resource := synctypes.Resource{
			SHA1:                    entry.SHA1,
			Filename:                entry.Filename,
			MediaType:               mediaType,
			Size:                    -1,
			Collection:              collection,
			RelativePublicationPath: entry.RelativePublicationPath,
		}
		contentKey := b.ObjectKey(resource)
		resource.Open = func(ctx context.Context) (io.ReadCloser, error) {
			return b.store.Get(ctx, b.container, contentKey)
		}

		if err := fn(resource); err != nil {
			return err
		}
	}
	return nil
}

// Store implements synctypes.NativeStorage.
func (b *BucketStorage) Store() blobstore.Store {
	return b.store
}

// ContainerName implements synctypes.NativeStorage.
func (b *BucketStorage) ContainerName() string {
	return b.container
}

// ObjectKey implements synctypes.NativeStorage. Content objects are
// addressed by their hash alone.
func (b *BucketStorage) ObjectKey(resource synctypes.Resource) string {
	return b.keyPrefix + resource.SHA1
}
