// Package resolver computes relative publication paths, target object keys
// and public URIs for resources.
//
// URI rendering is template-based: a pattern string containing placeholders
// is filled with the target's and the resource's values. Every value that
// becomes part of the URI path is percent-encoded per "/"-delimited segment,
// so slashes act only as separators and reserved characters inside a segment
// are escaped.
package resolver

import (
	"path"
	"strings"

	"github.com/flownative/go-blobsync/synctypes"
)

// Default URI patterns, selected when no explicit pattern is configured.
const (
	// defaultPattern is used when neither a pattern nor a base URI is
	// configured. The base URI is then the backend's native endpoint and
	// the container appears in the path.
	defaultPattern = "{baseUri}{containerName}/{keyPrefix}{sha1}/{filename}"

	// defaultPatternWithBaseURI is used when a base URI is configured but
	// no pattern. The base URI is expected to point at the container.
	defaultPatternWithBaseURI = "{baseUri}{keyPrefix}{sha1}/{filename}"
)

// Config carries the target-side values needed for URI resolution.
type Config struct {
	// ContainerName is the target container
	ContainerName string

	// KeyPrefix is the configured key prefix
	KeyPrefix string

	// BaseURI is the effective base URI, empty when none is configured
	BaseURI string

	// Pattern is the explicit URI template, empty when none is configured
	Pattern string

	// NativeEndpoint is the backend's public endpoint, ending in "/"
	NativeEndpoint string
}

// RelativePublicationPath returns the resource's path below the key prefix.
// Static items carry an explicit path; persistent resources are addressed
// by their content hash.
func RelativePublicationPath(resource synctypes.Resource) string {
	if resource.RelativePublicationPath != "" {
		return resource.RelativePublicationPath + resource.Filename
	}
	return resource.SHA1 + "/" + resource.Filename
}

// ObjectKey returns the fully qualified target key of a resource.
// It is a pure function of (keyPrefix, hash-or-path, filename), so
// republishing a resource always maps to the same key.
func ObjectKey(keyPrefix string, resource synctypes.Resource) string {
	return keyPrefix + RelativePublicationPath(resource)
}

// PersistentResourceURI renders the public URI of a persistent resource.
func PersistentResourceURI(cfg Config, resource synctypes.Resource) string {
	pattern := cfg.Pattern
	baseURI := cfg.BaseURI

	if pattern == "" {
		if baseURI == "" {
			pattern = defaultPattern
			baseURI = cfg.NativeEndpoint
		} else {
			pattern = defaultPatternWithBaseURI
		}
	}

	replacer := strings.NewReplacer(
		"{baseUri}", baseURI,
		"{containerName}", EncodeSegments(cfg.ContainerName),
		"{keyPrefix}", EncodeSegments(cfg.KeyPrefix),
		"{sha1}", EncodeSegments(resource.SHA1),
		"{filename}", EncodeSegments(resource.Filename),
		"{fileExtension}", EncodeSegments(FileExtension(resource.Filename)),
	)
	return replacer.Replace(pattern)
}

// StaticResourceURI renders the public URI of a static item. Static URIs
// always use the backend's native endpoint and never go through the
// pattern system.
func StaticResourceURI(cfg Config, relativePath string) string {
	return cfg.NativeEndpoint + EncodeSegments(cfg.ContainerName) + "/" +
		EncodeSegments(cfg.KeyPrefix) + EncodeSegments(relativePath)
}

// FileExtension returns the resource filename's extension without the dot.
func FileExtension(filename string) string {
	return strings.TrimPrefix(path.Ext(filename), ".")
}

// EncodeSegments percent-encodes every "/"-delimited segment of p
// independently, leaving the separators intact.
func EncodeSegments(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = encodeSegment(segment)
	}
	return strings.Join(segments, "/")
}

const upperhex = "0123456789ABCDEF"

// encodeSegment percent-encodes everything except RFC 3986 unreserved
// characters.
func encodeSegment(segment string) string {
	var b strings.Builder
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
