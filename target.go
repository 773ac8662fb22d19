// Package blobsync synchronizes content-addressed binary resources from a
// private backing store into publicly reachable object-store containers and
// resolves deterministic public URLs for them.
package blobsync

import (
	"context"
	"fmt"

	"github.com/flownative/go-blobsync/blobstore"
	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/engine"
	"github.com/flownative/go-blobsync/internal/resolver"
	"github.com/flownative/go-blobsync/internal/transcode"
	"github.com/flownative/go-blobsync/internal/validation"
	"github.com/flownative/go-blobsync/synctypes"
)

// Target is a publication target: one container on one object-store
// backend, plus the key prefix, compression and URI configuration applied
// to everything published into it.
//
// A Target is safe for concurrent use.
type Target struct {
	config   synctypes.TargetConfig
	store    blobstore.Store
	engine   *engine.Engine
	resolver resolver.Config
}

// NewTarget creates a publication target for the given container.
//
// All configuration problems surface here as ErrConfiguration, never later
// during publishing. If a custom base-URI provider is configured it is
// invoked exactly once, and its failure is fatal.
//
// Example:
//
//	target, err := blobsync.NewTarget(ctx, store, "assets",
//	    blobsync.WithKeyPrefix("sites/main/"),
//	    blobsync.WithGzipLevel(6),
//	)
func NewTarget(ctx context.Context, store blobstore.Store, containerName string, opts ...synctypes.Option) (*Target, error) {
	if store == nil {
		return nil, syncerrors.NewError("newTarget", syncerrors.ErrConfiguration).
			WithMessage("store must not be nil")
	}

	cfg := synctypes.TargetConfig{
		ContainerName: containerName,
		GzipLevel:     transcode.DefaultLevel,
		Concurrency:   engine.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validation.ValidateContainerName(cfg.ContainerName); err != nil {
		return nil, err
	}
	if cfg.KeyPrefix != "" {
		if err := validation.ValidateObjectKey(cfg.KeyPrefix); err != nil {
			return nil, err
		}
	}
	if cfg.GzipLevel < 0 || cfg.GzipLevel > 9 {
		return nil, syncerrors.NewError("newTarget", syncerrors.ErrConfiguration).
			WithContainer(cfg.ContainerName).
			WithMessage(fmt.Sprintf("gzip level must be between 0 and 9, got %d", cfg.GzipLevel))
	}
	if cfg.Concurrency <= 0 {
		return nil, syncerrors.NewError("newTarget", syncerrors.ErrConfiguration).
			WithContainer(cfg.ContainerName).
			WithMessage("concurrency must be positive")
	}

	if cfg.BaseURIProvider != nil {
		baseURI, err := cfg.BaseURIProvider(ctx, synctypes.BaseURIContext{
			TargetName:        cfg.Name,
			ContainerName:     cfg.ContainerName,
			KeyPrefix:         cfg.KeyPrefix,
			CurrentBaseURI:    cfg.BaseURI,
			SigningEnabled:    cfg.SigningEnabled,
			SignatureLifetime: cfg.SignatureLifetime,
		})
		if err != nil {
			return nil, syncerrors.NewError("newTarget", syncerrors.ErrConfiguration).
				WithContainer(cfg.ContainerName).
				WithMessage("base URI provider failed: " + err.Error())
		}
		cfg.BaseURI = baseURI
	}

	transcoder := transcode.New(cfg.GzipLevel, cfg.GzipMediaTypes)

	return &Target{
		config: cfg,
		store:  store,
		engine: engine.New(engine.Config{
			Store:         store,
			ContainerName: cfg.ContainerName,
			KeyPrefix:     cfg.KeyPrefix,
			CacheControl:  cfg.CacheControl,
			Concurrency:   cfg.Concurrency,
			Transcoder:    transcoder,
			Logger:        cfg.Logger,
		}),
		resolver: resolver.Config{
			ContainerName:  cfg.ContainerName,
			KeyPrefix:      cfg.KeyPrefix,
			BaseURI:        cfg.BaseURI,
			Pattern:        cfg.Pattern,
			NativeEndpoint: store.PublicEndpoint(),
		},
	}, nil
}

// ContainerName returns the target container.
func (t *Target) ContainerName() string {
	return t.config.ContainerName
}

// KeyPrefix returns the configured key prefix.
func (t *Target) KeyPrefix() string {
	return t.config.KeyPrefix
}

// BaseURI returns the effective base URI after provider resolution, or ""
// when the backend's native endpoint is in use.
func (t *Target) BaseURI() string {
	return t.config.BaseURI
}

// Check performs a connectivity self-test against the target container.
func (t *Target) Check(ctx context.Context) error {
	return t.engine.Check(ctx)
}

// validateResource checks the identity fields of a resource before any
// operation uses it.
func validateResource(resource synctypes.Resource) error {
	if resource.Filename == "" {
		return syncerrors.NewError("validateResource", syncerrors.ErrInvalidInput).
			WithMessage("resource filename must not be empty")
	}
	if resource.RelativePublicationPath != "" {
		return validation.ValidateObjectKey(resource.RelativePublicationPath + resource.Filename)
	}
	return validation.ValidateContentHash(resource.SHA1)
}

// validateCollection checks a collection's wiring.
func validateCollection(collection synctypes.Collection) error {
	if collection.Name == "" {
		return syncerrors.NewError("validateCollection", syncerrors.ErrInvalidInput).
			WithMessage("collection name must not be empty")
	}
	if collection.Source == nil {
		return syncerrors.NewError("validateCollection", syncerrors.ErrInvalidInput).
			WithMessage("collection has no source")
	}
	return nil
}
