// Package transcode implements the compression pipeline applied to eligible
// resources before upload.
//
// Content is streamed in fixed-size chunks through a gzip writer into a
// bounded-memory spool, so arbitrarily large resources never have to fit in
// memory. A failure anywhere in the stream is a hard failure for that
// object: the spool is discarded and nothing partial is ever handed to the
// uploader.
package transcode

import (
	"context"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/flownative/go-blobsync/errors"
	"github.com/flownative/go-blobsync/internal/pool"
)

// DefaultLevel is the default gzip compression level.
const DefaultLevel = 9

// DefaultMediaTypes is the default set of compressible media types.
// Binary and already-compressed formats are deliberately excluded.
var DefaultMediaTypes = []string{
	"text/css",
	"text/html",
	"text/javascript",
	"text/plain",
	"text/xml",
	"image/svg+xml",
	"image/vnd.microsoft.icon",
	"image/x-icon",
	"application/javascript",
	"application/json",
	"application/vnd.ms-fontobject",
	"application/x-font-opentype",
	"application/x-font-truetype",
	"application/x-font-ttf",
	"application/x-javascript",
	"application/xhtml+xml",
	"application/xml",
	"font/eot",
	"font/opentype",
	"font/otf",
}

// Transcoder decides which media types get compressed and performs the
// compression.
type Transcoder struct {
	level      int
	mediaTypes map[string]struct{}
	maxMemory  int
}

// New creates a transcoder with the given gzip level (0 through 9) and
// eligible media types. A nil mediaTypes slice selects DefaultMediaTypes.
func New(level int, mediaTypes []string) *Transcoder {
	if mediaTypes == nil {
		mediaTypes = DefaultMediaTypes
	}
	set := make(map[string]struct{}, len(mediaTypes))
	for _, mediaType := range mediaTypes {
		set[normalizeMediaType(mediaType)] = struct{}{}
	}
	return &Transcoder{
		level:      level,
		mediaTypes: set,
		maxMemory:  DefaultMaxSpoolMemory,
	}
}

// ShouldCompress reports whether a resource of the given media type is
// eligible for compression. Level 0 disables compression entirely.
func (t *Transcoder) ShouldCompress(mediaType string) bool {
	if t.level == 0 {
		return false
	}
	_, ok := t.mediaTypes[normalizeMediaType(mediaType)]
	return ok
}

// Compress streams src through gzip into a spool and returns it.
// The caller must Close the returned spool. On error the spool is already
// released and nothing must be uploaded for this object.
func (t *Transcoder) Compress(ctx context.Context, src io.Reader) (*Spool, error) {
	spool := NewSpool(t.maxMemory)

	writer, err := gzip.NewWriterLevel(spool, t.level)
	if err != nil {
		spool.Close()
		return nil, errors.NewError("compress", errors.ErrTranscode).
			WithMessage(err.Error())
	}

	chunk := pool.GetChunk()
	defer pool.PutChunk(chunk)

	for {
		if err := ctx.Err(); err != nil {
			spool.Close()
			return nil, err
		}

		n, readErr := src.Read(chunk)
		if n > 0 {
			if _, writeErr := writer.Write(chunk[:n]); writeErr != nil {
				spool.Close()
				return nil, errors.NewError("compress", errors.ErrTranscode).
					WithMessage(writeErr.Error())
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			spool.Close()
			return nil, errors.NewError("compress", errors.ErrTranscode).
				WithMessage(readErr.Error())
		}
	}

	if err := writer.Close(); err != nil {
		spool.Close()
		return nil, errors.NewError("compress", errors.ErrTranscode).
			WithMessage(err.Error())
	}

	return spool, nil
}

// normalizeMediaType lowercases a media type and strips any parameters.
func normalizeMediaType(mediaType string) string {
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
