// Package blobsync provides functional options for configuring publication
// targets. These options follow the functional options pattern for clean,
// composable configuration.
package blobsync

import (
	"log/slog"
	"time"

	"github.com/flownative/go-blobsync/synctypes"
)

// WithName sets a human-readable target name used in logs and in the
// base-URI provider context.
func WithName(name string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.Name = name
	}
}

// WithKeyPrefix sets the prefix prepended to every target object key.
// Multiple collections can share one container by using distinct prefixes.
func WithKeyPrefix(keyPrefix string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.KeyPrefix = keyPrefix
	}
}

// WithBaseURI sets an explicit base URI for public URL resolution, replacing
// the backend's native endpoint. It should end with "/".
func WithBaseURI(baseURI string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.BaseURI = baseURI
	}
}

// WithPattern sets an explicit URI template. Supported placeholders are
// {baseUri}, {containerName}, {keyPrefix}, {sha1}, {filename} and
// {fileExtension}.
func WithPattern(pattern string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.Pattern = pattern
	}
}

// WithGzipLevel sets the compression level for eligible media types.
// Valid levels are 0 (no compression) through 9 (maximum). Default is 9.
func WithGzipLevel(level int) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.GzipLevel = level
	}
}

// WithGzipMediaTypes replaces the default set of compressible media types.
func WithGzipMediaTypes(mediaTypes []string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.GzipMediaTypes = mediaTypes
	}
}

// WithCacheControl sets a Cache-Control header value applied to every
// published object.
func WithCacheControl(cacheControl string) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.CacheControl = cacheControl
	}
}

// WithConcurrency bounds the worker pool used during bulk synchronization.
// Default is 5.
func WithConcurrency(concurrency int) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.Concurrency = concurrency
	}
}

// WithSigning records the signing configuration. The values are passed to a
// custom base-URI provider; no signed-URL generation is performed.
func WithSigning(enabled bool, lifetime time.Duration) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.SigningEnabled = enabled
		c.SignatureLifetime = lifetime
	}
}

// WithBaseURIProvider installs a custom base-URI provider. It is invoked
// once during target construction; its result replaces the configured base
// URI and a failure aborts construction.
func WithBaseURIProvider(provider synctypes.BaseURIProvider) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.BaseURIProvider = provider
	}
}

// WithLogger sets the logger receiving progress and per-object warnings.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) synctypes.Option {
	return func(c *synctypes.TargetConfig) {
		c.Logger = logger
	}
}
