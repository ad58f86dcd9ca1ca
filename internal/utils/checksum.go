package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// chunkSize is the buffer used when streaming content through a digester
const chunkSize = 1 << 20

// Checksum contains the content digest of a file
type Checksum struct {
	Digest digest.Digest
	Size   int64
}

// SHA256 returns the hex encoded SHA-256 value
func (c *Checksum) SHA256() string {
	return c.Digest.Encoded()
}

// CalculateChecksum streams a file through a SHA-256 digester in fixed-size chunks
func CalculateChecksum(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return CalculateReaderChecksum(f)
}

// CalculateReaderChecksum digests everything left in r
func CalculateReaderChecksum(r io.Reader) (*Checksum, error) {
	digester := digest.SHA256.Digester()
	buf := make([]byte, chunkSize)

	n, err := io.CopyBuffer(digester.Hash(), r, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to digest content: %w", err)
	}

	return &Checksum{
		Digest: digester.Digest(),
		Size:   n,
	}, nil
}

// ValidateSHA256 checks that value is a hex encoded SHA-256 digest
func ValidateSHA256(value string) error {
	return digest.NewDigestFromEncoded(digest.SHA256, value).Validate()
}
