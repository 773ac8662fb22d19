package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// DefaultMaxSpoolMemory is the in-memory threshold before a spool spills
// to a temporary file (8MB).
const DefaultMaxSpoolMemory = 8 * 1024 * 1024

// Spool is a write-once, read-once buffer that keeps small payloads in
// memory and spills larger ones to a temporary file.
//
// Usage is strictly two-phase: write the payload, call Reader, consume it,
// then Close. Close must be called on every path to release the backing
// temporary file.
type Spool struct {
	maxMemory int
	memory    *bytes.Buffer
	file      *os.File
	size      int64
}

// NewSpool creates a spool that holds up to maxMemory bytes in memory.
// A non-positive maxMemory selects DefaultMaxSpoolMemory.
func NewSpool(maxMemory int) *Spool {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxSpoolMemory
	}
	return &Spool{
		maxMemory: maxMemory,
		memory:    &bytes.Buffer{},
	}
}

// Write implements io.Writer. The first write that would exceed the memory
// threshold moves the buffered bytes to a temporary file.
func (s *Spool) Write(p []byte) (int, error) {
	if s.file == nil && s.memory.Len()+len(p) > s.maxMemory {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.memory.Write(p)
	}
	s.size += int64(n)
	return n, err
}

// spill moves the in-memory bytes to a freshly created temporary file.
func (s *Spool) spill() error {
	file, err := os.CreateTemp("", "blobsync-spool-*")
	if err != nil {
		return fmt.Errorf("creating spool file: %w", err)
	}
	if _, err := file.Write(s.memory.Bytes()); err != nil {
		file.Close()
		os.Remove(file.Name())
		return fmt.Errorf("spilling spool to file: %w", err)
	}
	s.memory = nil
	s.file = file
	return nil
}

// Size returns the number of bytes written so far.
func (s *Spool) Size() int64 {
	return s.size
}

// Reader returns a reader over the spooled payload. It must be called only
// after all writes are done, and invalidates further writes.
func (s *Spool) Reader() (io.Reader, error) {
	if s.file != nil {
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewinding spool file: %w", err)
		}
		return s.file, nil
	}
	return bytes.NewReader(s.memory.Bytes()), nil
}

// Close releases the spool's backing storage. It is safe to call multiple
// times.
func (s *Spool) Close() error {
	s.memory = nil
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	if removeErr := os.Remove(name); err == nil {
		err = removeErr
	}
	s.file = nil
	return err
}
