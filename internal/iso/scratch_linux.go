package iso

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// NewScratch creates an anonymous in-memory file
func NewScratch() (*Scratch, error) {
	fd, err := unix.MemfdCreate("alma-sbom-package", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}

	return &Scratch{
		file: os.NewFile(uintptr(fd), "alma-sbom-package"),
		path: fmt.Sprintf("/proc/self/fd/%d", fd),
		buf:  make([]byte, copyBufferSize),
	}, nil
}

// Close releases the buffer
func (s *Scratch) Close() error {
	return s.file.Close()
}
