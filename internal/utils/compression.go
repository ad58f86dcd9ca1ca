package utils

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Compression is the compression applied to an output stream
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXz
)

// CompressionFor picks the compression implied by a file name suffix
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(path, ".xz"):
		return CompressionXz
	default:
		return CompressionNone
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressWriter wraps w so that everything written to it is compressed.
// Closing the returned writer flushes the compressor but leaves w open.
func NewCompressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionXz:
		return xz.NewWriter(w)
	default:
		return nopWriteCloser{w}, nil
	}
}
