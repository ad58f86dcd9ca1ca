package ledger

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the ledger holds no record for a hash
var ErrNotFound = errors.New("no ledger record for hash")

// Record is an attested ledger entry
type Record struct {
	Name      string                 `json:"Name"`
	Hash      string                 `json:"Hash"`
	Metadata  map[string]interface{} `json:"Metadata"`
	Timestamp int64                  `json:"-"`
}

// Client is the ledger capability used by the collector
type Client interface {
	// Authenticate returns the verified record stored for a content hash
	Authenticate(ctx context.Context, hash string) (*Record, error)
	// AuthenticateFile hashes a local file and returns its verified record
	AuthenticateFile(ctx context.Context, path string) (*Record, error)
}
