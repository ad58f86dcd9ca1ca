package iso

import (
	"fmt"
	"io"
	"os"
)

const copyBufferSize = 1 << 20

// Scratch is a single reusable buffer exposed as a file path. Every Fill
// replaces the previous content, so a path handed out earlier reads the new
// bytes afterwards.
type Scratch struct {
	file *os.File
	path string
	buf  []byte
}

// Path returns a path other collectors can open to read the current content
func (s *Scratch) Path() string {
	return s.path
}

// Fill replaces the buffer content with everything read from r
func (s *Scratch) Fill(r io.Reader) (int64, error) {
	if err := s.file.Truncate(0); err != nil {
		return 0, fmt.Errorf("failed to truncate scratch buffer: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind scratch buffer: %w", err)
	}

	n, err := io.CopyBuffer(s.file, r, s.buf)
	if err != nil {
		return n, fmt.Errorf("failed to fill scratch buffer: %w", err)
	}
	return n, nil
}
