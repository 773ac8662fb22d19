package blobsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/testutil"
	"github.com/flownative/go-blobsync/synctypes"
)

const testSHA1 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"

func newStore() *testutil.MemStore {
	return testutil.NewMemStore("https://s3.eu-central-1.amazonaws.com/")
}

func TestNewTargetValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil store", func(t *testing.T) {
		_, err := NewTarget(ctx, nil, "assets")
		require.Error(t, err)
		assert.True(t, syncerrors.IsConfiguration(err))
	})

	t.Run("invalid container name", func(t *testing.T) {
		_, err := NewTarget(ctx, newStore(), "Bad_Name")
		require.Error(t, err)
		assert.True(t, syncerrors.IsConfiguration(err))
	})

	t.Run("gzip level out of range", func(t *testing.T) {
		_, err := NewTarget(ctx, newStore(), "assets", WithGzipLevel(11))
		require.Error(t, err)
		assert.True(t, errors.Is(err, syncerrors.ErrConfiguration))
	})

	t.Run("traversal in key prefix", func(t *testing.T) {
		_, err := NewTarget(ctx, newStore(), "assets", WithKeyPrefix("../escape/"))
		require.Error(t, err)
	})

	t.Run("non-positive concurrency", func(t *testing.T) {
		_, err := NewTarget(ctx, newStore(), "assets", WithConcurrency(-1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, syncerrors.ErrConfiguration))
	})

	t.Run("valid configuration", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets",
			WithKeyPrefix("sites/main/"),
			WithGzipLevel(6),
			WithCacheControl("max-age=86400"),
		)
		require.NoError(t, err)
		assert.Equal(t, "assets", target.ContainerName())
		assert.Equal(t, "sites/main/", target.KeyPrefix())
	})
}

func TestNewTargetBaseURIProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("provider result becomes the base URI", func(t *testing.T) {
		calls := 0
		provider := func(ctx context.Context, info synctypes.BaseURIContext) (string, error) {
			calls++
			assert.Equal(t, "assets", info.ContainerName)
			assert.Equal(t, "sites/main/", info.KeyPrefix)
			assert.True(t, info.SigningEnabled)
			return "https://cdn.example.com/", nil
		}

		target, err := NewTarget(ctx, newStore(), "assets",
			WithKeyPrefix("sites/main/"),
			WithSigning(true, 0),
			WithBaseURIProvider(provider),
		)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "https://cdn.example.com/", target.BaseURI())
	})

	t.Run("provider failure is a configuration error", func(t *testing.T) {
		provider := func(ctx context.Context, info synctypes.BaseURIContext) (string, error) {
			return "", errors.New("no such provider operation")
		}

		_, err := NewTarget(ctx, newStore(), "assets", WithBaseURIProvider(provider))
		require.Error(t, err)
		assert.True(t, errors.Is(err, syncerrors.ErrConfiguration))
	})
}

func TestPublicURIs(t *testing.T) {
	ctx := context.Background()
	resource := synctypes.Resource{SHA1: testSHA1, Filename: "logo.svg"}

	t.Run("native endpoint default", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets", WithKeyPrefix("sites/main/"))
		require.NoError(t, err)
		assert.Equal(t,
			"https://s3.eu-central-1.amazonaws.com/assets/sites/main/"+testSHA1+"/logo.svg",
			target.PublicPersistentResourceURI(resource))
	})

	t.Run("base URI default", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets",
			WithKeyPrefix("sites/main/"),
			WithBaseURI("https://cdn.example.com/"),
		)
		require.NoError(t, err)
		assert.Equal(t,
			"https://cdn.example.com/sites/main/"+testSHA1+"/logo.svg",
			target.PublicPersistentResourceURI(resource))
	})

	t.Run("explicit pattern", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets",
			WithBaseURI("https://assets.example.com/"),
			WithPattern("{baseUri}{sha1}/{filename}"),
		)
		require.NoError(t, err)
		assert.Equal(t,
			"https://assets.example.com/"+testSHA1+"/logo.svg",
			target.PublicPersistentResourceURI(resource))
	})

	t.Run("static URIs ignore base URI and pattern", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets",
			WithKeyPrefix("sites/main/"),
			WithBaseURI("https://cdn.example.com/"),
			WithPattern("{baseUri}{sha1}/{filename}"),
		)
		require.NoError(t, err)
		assert.Equal(t,
			"https://s3.eu-central-1.amazonaws.com/assets/sites/main/css/site.css",
			target.PublicStaticResourceURI("css/site.css"))
	})

	t.Run("target object key", func(t *testing.T) {
		target, err := NewTarget(ctx, newStore(), "assets", WithKeyPrefix("sites/main/"))
		require.NoError(t, err)
		assert.Equal(t, "sites/main/"+testSHA1+"/logo.svg", target.TargetObjectKey(resource))
		assert.Equal(t, testSHA1+"/logo.svg", target.RelativePublicationPath(resource))
	})
}

func TestTargetInputValidation(t *testing.T) {
	ctx := context.Background()
	target, err := NewTarget(ctx, newStore(), "assets")
	require.NoError(t, err)

	t.Run("collection without source", func(t *testing.T) {
		_, err := target.PublishCollection(ctx, synctypes.Collection{Name: "persistent"})
		require.Error(t, err)
		assert.True(t, syncerrors.IsInvalidInput(err))
	})

	t.Run("collection without name", func(t *testing.T) {
		_, err := target.PublishCollection(ctx, synctypes.Collection{Source: &testutil.StaticSource{}})
		require.Error(t, err)
		assert.True(t, syncerrors.IsInvalidInput(err))
	})

	t.Run("resource with malformed hash", func(t *testing.T) {
		err := target.PublishResource(ctx, synctypes.Resource{SHA1: "XYZ", Filename: "f.bin"},
			synctypes.Collection{Name: "persistent", Source: &testutil.StaticSource{}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, syncerrors.ErrInvalidContentHash))
	})

	t.Run("resource without filename", func(t *testing.T) {
		err := target.UnpublishResource(ctx, synctypes.Resource{SHA1: testSHA1})
		require.Error(t, err)
		assert.True(t, syncerrors.IsInvalidInput(err))
	})
}

func TestTargetPublishAndUnpublish(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	target, err := NewTarget(ctx, store, "assets", WithCacheControl("max-age=86400"))
	require.NoError(t, err)

	resource := testutil.NewResource(testSHA1, "logo.svg", "image/svg+xml", "<svg/>")
	collection := synctypes.Collection{
		Name:   "persistent",
		Source: &testutil.StaticSource{Resources: []synctypes.Resource{resource}},
	}

	result, err := target.PublishCollection(ctx, collection)
	require.NoError(t, err)
	assert.True(t, result.Ok())

	obj, ok := store.Object("assets", testSHA1+"/logo.svg")
	require.True(t, ok)
	assert.Equal(t, "max-age=86400", obj.CacheControl)

	require.NoError(t, target.UnpublishResource(ctx, resource))
	assert.Empty(t, store.Keys("assets"))
}
