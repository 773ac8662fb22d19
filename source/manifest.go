// Package source provides resource sources for the publication engine: a
// manifest-driven filesystem source and a bucket-backed storage that
// supports server-side copying.
package source

import (
	"fmt"

	"gopkg.in/yaml.v3"

	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/validation"
)

// Manifest describes the resources of one or more collections. It is the
// on-disk inventory a filesystem source reads.
type Manifest struct {
	// Collections maps collection names to their resource entries.
	Collections map[string][]ManifestEntry `yaml:"collections"`
}

// ManifestEntry is one resource in a manifest.
type ManifestEntry struct {
	// SHA1 is the lowercase hex content hash
	SHA1 string `yaml:"sha1"`

	// Filename is the resource's file name
	Filename string `yaml:"filename"`

	// MediaType is the declared MIME type. When empty, the source sniffs it
	// from the content.
	MediaType string `yaml:"mediaType,omitempty"`

	// RelativePublicationPath marks the entry as a static item published
	// under an explicit path instead of its hash. Must end with "/".
	RelativePublicationPath string `yaml:"relativePublicationPath,omitempty"`

	// ContentPath overrides the content file location relative to the
	// source root. Defaults to "data/<sha1>".
	ContentPath string `yaml:"contentPath,omitempty"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, syncerrors.NewError("parseManifest", syncerrors.ErrInvalidInput).
			WithMessage("decoding manifest: " + err.Error())
	}

	for collection, entries := range manifest.Collections {
		for i, entry := range entries {
			if err := validateEntry(entry); err != nil {
				return nil, syncerrors.NewError("parseManifest", err).
					WithMessage(fmt.Sprintf("collection %s, entry %d", collection, i))
			}
		}
	}
	return &manifest, nil
}

// validateEntry checks one manifest entry.
func validateEntry(entry ManifestEntry) error {
	if entry.Filename == "" {
		return syncerrors.NewError("validateEntry", syncerrors.ErrInvalidInput).
			WithMessage("entry has no filename")
	}
	if err := validation.ValidateContentHash(entry.SHA1); err != nil {
		return err
	}
	if err := validation.ValidateMediaType(entry.MediaType); err != nil {
		return err
	}
	if entry.RelativePublicationPath != "" {
		if entry.RelativePublicationPath[len(entry.RelativePublicationPath)-1] != '/' {
			return syncerrors.NewError("validateEntry", syncerrors.ErrInvalidInput).
				WithMessage("relativePublicationPath must end with /")
		}
		if err := validation.ValidateObjectKey(entry.RelativePublicationPath + entry.Filename); err != nil {
			return err
		}
	}
	return nil
}
