package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"runtime/debug"
	"strconv"
	"strings"

	immudb "github.com/codenotary/immudb/pkg/client"
	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/utils"
)

const defaultImmudbPort = 3322

// ImmudbConfig holds connection settings for the immudb ledger
type ImmudbConfig struct {
	Username      string
	Password      string
	Database      string
	Address       string
	PublicKeyFile string
}

// ImmudbClient reads verified records from an immudb database
type ImmudbClient struct {
	config ImmudbConfig
	client immudb.ImmuClient
}

// NewImmudbClient opens a session on the configured immudb server.
// The session stays open until Close is called.
func NewImmudbClient(ctx context.Context, config ImmudbConfig) (*ImmudbClient, error) {
	host, port, err := splitAddress(config.Address)
	if err != nil {
		return nil, err
	}

	opts := immudb.DefaultOptions().
		WithAddress(host).
		WithPort(port)
	if config.PublicKeyFile != "" {
		opts = opts.WithServerSigningPubKey(config.PublicKeyFile)
	}

	client := immudb.NewClient().WithOptions(opts)

	log.Debugf("Opening immudb session on %s:%d/%s", host, port, config.Database)
	if err := client.OpenSession(ctx, []byte(config.Username), []byte(config.Password), config.Database); err != nil {
		return nil, fmt.Errorf("failed to open immudb session: %w", err)
	}

	return &ImmudbClient{config: config, client: client}, nil
}

// Close ends the immudb session
func (c *ImmudbClient) Close(ctx context.Context) error {
	return c.client.CloseSession(ctx)
}

// Authenticate implements Client
func (c *ImmudbClient) Authenticate(ctx context.Context, hash string) (*Record, error) {
	entry, err := c.client.VerifiedGet(ctx, []byte(hash))
	if err != nil {
		if isKeyNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("failed to get verified entry for %s: %w", hash, err)
	}

	record := &Record{}
	if err := json.Unmarshal(entry.Value, record); err != nil {
		return nil, fmt.Errorf("failed to decode ledger value for %s: %w", hash, err)
	}

	tx, err := c.client.VerifiedTxByID(ctx, entry.Tx)
	if err != nil {
		return nil, fmt.Errorf("failed to get verified transaction %d: %w", entry.Tx, err)
	}
	if tx.Header != nil {
		record.Timestamp = tx.Header.Ts
	}

	return record, nil
}

// AuthenticateFile implements Client
func (c *ImmudbClient) AuthenticateFile(ctx context.Context, path string) (*Record, error) {
	sum, err := utils.CalculateChecksum(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return c.Authenticate(ctx, sum.SHA256())
}

func isKeyNotFound(err error) bool {
	return strings.Contains(err.Error(), "key not found")
}

func splitAddress(address string) (string, int, error) {
	if !strings.Contains(address, ":") {
		return address, defaultImmudbPort, nil
	}

	host, rawPort, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, fmt.Errorf("invalid immudb address %q: %w", address, err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return "", 0, fmt.Errorf("invalid immudb port %q: %w", rawPort, err)
	}
	return host, port, nil
}

const immudbModule = "github.com/codenotary/immudb"

// Version returns the version of the immudb client library linked in
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == immudbModule {
			return strings.TrimPrefix(dep.Version, "v")
		}
	}
	return "unknown"
}
