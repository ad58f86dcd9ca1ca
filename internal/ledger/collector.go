package ledger

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// Collector turns attested ledger records into packages
type Collector struct {
	client  Client
	albsURL string
}

// NewCollector creates a collector on top of a ledger client. albsURL is
// used to derive build URLs from the build ids found in records.
func NewCollector(client Client, albsURL string) *Collector {
	return &Collector{client: client, albsURL: albsURL}
}

// CollectByHash returns the package recorded in the ledger for hash
func (c *Collector) CollectByHash(ctx context.Context, hash string) (*models.Package, error) {
	record, err := c.client.Authenticate(ctx, hash)
	if err != nil {
		return nil, models.NewError(models.ErrLedger, hash, err)
	}
	return c.normalize(record, hash)
}

// CollectByFile hashes a local file and returns the package recorded for it
func (c *Collector) CollectByFile(ctx context.Context, path string) (*models.Package, error) {
	record, err := c.client.AuthenticateFile(ctx, path)
	if err != nil {
		return nil, models.NewError(models.ErrLedger, path, err)
	}
	return c.normalize(record, "")
}

// normalize dispatches a record to the normalizer of its generation. When
// requested is set, the record must be the one stored for that hash.
func (c *Collector) normalize(record *Record, requested string) (*models.Package, error) {
	if record.Metadata == nil {
		return nil, models.NewError(models.ErrMalformedInput, record.Hash,
			fmt.Errorf("%w: no Metadata field", models.ErrMalformedRecord))
	}
	meta := metadata(record.Metadata)

	version, err := meta.version()
	if err != nil {
		return nil, models.NewError(models.ErrMalformedInput, record.Hash, err)
	}

	if requested != "" && requested != record.Hash {
		return nil, models.NewError(models.ErrMalformedInput, requested,
			fmt.Errorf("%w: record holds %s", models.ErrHashMismatch, record.Hash))
	}
	hash := requested
	if hash == "" {
		hash = record.Hash
	}

	normalize, ok := normalizers[version]
	if !ok {
		return nil, models.NewError(models.ErrMalformedInput, hash,
			fmt.Errorf("%w: %q", models.ErrUnsupportedSchemaVersion, version))
	}
	log.Debugf("Normalizing ledger record %s with schema version %s", hash, version)

	pkg, err := normalize(&normalization{
		record:  record,
		meta:    meta,
		hash:    models.NewSHA256(hash),
		albsURL: c.albsURL,
	})
	if err != nil {
		return nil, models.NewError(models.ErrMalformedInput, hash, err)
	}
	return pkg, nil
}
