package transcode

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "github.com/flownative/go-blobsync/errors"
)

func TestShouldCompress(t *testing.T) {
	tr := New(DefaultLevel, nil)

	t.Run("default set", func(t *testing.T) {
		assert.True(t, tr.ShouldCompress("text/css"))
		assert.True(t, tr.ShouldCompress("image/svg+xml"))
		assert.False(t, tr.ShouldCompress("image/png"))
		assert.False(t, tr.ShouldCompress("application/zip"))
	})

	t.Run("parameters and case are ignored", func(t *testing.T) {
		assert.True(t, tr.ShouldCompress("Text/CSS"))
		assert.True(t, tr.ShouldCompress("text/html; charset=utf-8"))
	})

	t.Run("custom set", func(t *testing.T) {
		custom := New(DefaultLevel, []string{"application/wasm"})
		assert.True(t, custom.ShouldCompress("application/wasm"))
		assert.False(t, custom.ShouldCompress("text/css"))
	})

	t.Run("level zero disables compression", func(t *testing.T) {
		off := New(0, nil)
		assert.False(t, off.ShouldCompress("text/css"))
	})
}

func TestCompressRoundTrip(t *testing.T) {
	tr := New(6, nil)
	content := strings.Repeat("body { margin: 0; }\n", 1000)

	spool, err := tr.Compress(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	defer spool.Close()

	assert.Less(t, spool.Size(), int64(len(content)))

	payload, err := spool.Reader()
	require.NoError(t, err)

	reader, err := gzip.NewReader(payload)
	require.NoError(t, err)
	decompressed, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(decompressed))
}

// failingReader errors after a few bytes, simulating a source stream dying
// mid-transfer.
type failingReader struct {
	data []byte
	pos  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, errors.New("connection reset")
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestCompressSourceFailure(t *testing.T) {
	tr := New(DefaultLevel, nil)

	spool, err := tr.Compress(context.Background(), &failingReader{data: []byte("partial")})
	require.Error(t, err)
	assert.Nil(t, spool)
	assert.True(t, errors.Is(err, syncerrors.ErrTranscode))
}

func TestCompressCancellation(t *testing.T) {
	tr := New(DefaultLevel, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	spool, err := tr.Compress(ctx, strings.NewReader("content"))
	require.Error(t, err)
	assert.Nil(t, spool)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSpoolMemoryOnly(t *testing.T) {
	spool := NewSpool(1024)
	defer spool.Close()

	_, err := spool.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), spool.Size())

	payload, err := spool.Reader()
	require.NoError(t, err)
	data, err := io.ReadAll(payload)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSpoolSpillsToFile(t *testing.T) {
	spool := NewSpool(16)

	content := bytes.Repeat([]byte("0123456789"), 10)
	_, err := spool.Write(content)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), spool.Size())

	payload, err := spool.Reader()
	require.NoError(t, err)
	data, err := io.ReadAll(payload)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	require.NoError(t, spool.Close())
	// Close is idempotent.
	require.NoError(t, spool.Close())
}

func TestSpoolSpillKeepsEarlierWrites(t *testing.T) {
	spool := NewSpool(8)
	defer spool.Close()

	_, err := spool.Write([]byte("first-"))
	require.NoError(t, err)
	_, err = spool.Write([]byte("second-that-spills"))
	require.NoError(t, err)

	payload, err := spool.Reader()
	require.NoError(t, err)
	data, err := io.ReadAll(payload)
	require.NoError(t, err)
	assert.Equal(t, "first-second-that-spills", string(data))
}
