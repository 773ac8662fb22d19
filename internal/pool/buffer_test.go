package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPool(t *testing.T) {
	cp := NewChunkPool()

	buf := cp.Get()
	assert.Len(t, buf, ChunkSize)

	cp.Put(buf)
	again := cp.Get()
	assert.Len(t, again, ChunkSize)
}

func TestChunkPoolRejectsForeignBuffers(t *testing.T) {
	cp := NewChunkPool()
	// Wrong-capacity buffers are dropped, not pooled.
	cp.Put(make([]byte, 16))

	buf := cp.Get()
	assert.Len(t, buf, ChunkSize)
}

func TestGlobalChunkHelpers(t *testing.T) {
	buf := GetChunk()
	assert.Len(t, buf, ChunkSize)
	PutChunk(buf)
}
