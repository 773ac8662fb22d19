package source

import (
	"context"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	syncerrors "github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/synctypes"
)

// ManifestFilename is the inventory file a filesystem source reads at its
// root.
const ManifestFilename = "resources.yaml"

// defaultContentDir is where content files live below the source root,
// addressed by their hash.
const defaultContentDir = "data"

// FilesystemSource yields resources from a directory tree: a YAML manifest
// at the root lists the entries, content files live under data/<sha1>
// unless an entry names an explicit content path.
//
// The manifest is re-read on every enumeration, so a long-lived source
// picks up external changes.
type FilesystemSource struct {
	fs   fs.Filesystem
	root string
}

var _ synctypes.Source = (*FilesystemSource)(nil)

// NewFilesystemSource creates a source rooted at the given directory of the
// filesystem.
func NewFilesystemSource(filesystem fs.Filesystem, root string) *FilesystemSource {
	return &FilesystemSource{
		fs:   filesystem,
		root: root,
	}
}

// EachObject implements synctypes.Source.
//
// Entries without a declared media type are sniffed from their content.
func (s *FilesystemSource) EachObject(ctx context.Context, collection string, fn func(synctypes.Resource) error) error {
	data, err := s.fs.ReadFile(path.Join(s.root, ManifestFilename))
	if err != nil {
		return syncerrors.NewError("eachObject", err).
			WithMessage("reading manifest")
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return err
	}

	entries, ok := manifest.Collections[collection]
	if !ok {
		return syncerrors.NewError("eachObject", syncerrors.ErrInvalidInput).
			WithMessage("unknown collection " + collection)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		contentPath := entry.ContentPath
		if contentPath == "" {
			contentPath = path.Join(defaultContentDir, entry.SHA1)
		}
		fullPath := path.Join(s.root, contentPath)

		info, err := s.fs.Stat(fullPath)
		if err != nil {
			return syncerrors.NewError("eachObject", err).
				WithKey(entry.SHA1).
				WithMessage("missing content file " + fullPath)
		}

		mediaType := entry.MediaType
		if mediaType == "" {
			mediaType, err = s.detectMediaType(fullPath)
			if err != nil {
				return err
			}
		}

		resource := synctypes.Resource{
			SHA1:                    entry.SHA1,
			Filename:                entry.Filename,
			MediaType:               mediaType,
			Size:                    info.Size(),
			Collection:              collection,
			RelativePublicationPath: entry.RelativePublicationPath,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return s.fs.Open(fullPath)
			},
		}
		if err := fn(resource); err != nil {
			return err
		}
	}
	return nil
}

// detectMediaType sniffs the media type from the content file.
func (s *FilesystemSource) detectMediaType(fullPath string) (string, error) {
	file, err := s.fs.Open(fullPath)
	if err != nil {
		return "", syncerrors.NewError("detectMediaType", err).
			WithMessage("opening " + fullPath)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", syncerrors.NewError("detectMediaType", err).
			WithMessage("sniffing " + fullPath)
	}
	return detected.String(), nil
}
