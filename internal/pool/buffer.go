// Package pool provides memory management optimizations.
// This includes chunk buffer pooling to reduce allocations.
//
// The transcoder reads source streams in fixed-size chunks; pooling the
// chunk buffers keeps bulk synchronization runs from churning the allocator.
package pool

import (
	"sync"
)

// ChunkSize is the read chunk used when streaming resource content
// through the compressor (256KB).
const ChunkSize = 256 * 1024

// ChunkPool manages reusable chunk buffers.
type ChunkPool struct {
	chunks *sync.Pool
}

// NewChunkPool creates a new chunk buffer pool.
func NewChunkPool() *ChunkPool {
	return &ChunkPool{
		chunks: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, ChunkSize)
				return &buf
			},
		},
	}
}

// Get returns a chunk buffer of length ChunkSize.
// The caller is responsible for calling Put to return the buffer to the pool.
func (cp *ChunkPool) Get() []byte {
	bufPtr := cp.chunks.Get().(*[]byte)
	return (*bufPtr)[:ChunkSize]
}

// Put returns a chunk buffer to the pool.
// The buffer should not be used after calling Put.
func (cp *ChunkPool) Put(buf []byte) {
	if cap(buf) != ChunkSize {
		return
	}
	buf = buf[:ChunkSize]
	cp.chunks.Put(&buf)
}

// Global chunk pool instance for use throughout the module.
var globalChunkPool = NewChunkPool()

// GetChunk returns a chunk buffer from the global pool.
func GetChunk() []byte {
	return globalChunkPool.Get()
}

// PutChunk returns a chunk buffer to the global pool.
func PutChunk(buf []byte) {
	globalChunkPool.Put(buf)
}
