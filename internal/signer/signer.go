package signer

import "io"

// Signer produces detached signatures for SBOM documents
type Signer interface {
	// SignDetached creates an armored detached signature of the content of r
	SignDetached(r io.Reader) ([]byte, error)

	// PublicKey returns the armored public key that verifies the signatures
	PublicKey() ([]byte, error)
}
