//go:build !linux

package iso

import (
	"os"
)

// NewScratch creates a temporary file used as the buffer
func NewScratch() (*Scratch, error) {
	f, err := os.CreateTemp("", "alma-sbom-package-*.rpm")
	if err != nil {
		return nil, err
	}

	return &Scratch{
		file: f,
		path: f.Name(),
		buf:  make([]byte, copyBufferSize),
	}, nil
}

// Close releases the buffer and removes the temporary file
func (s *Scratch) Close() error {
	err := s.file.Close()
	if rmErr := os.Remove(s.path); err == nil {
		err = rmErr
	}
	return err
}
