package ledger

import (
	"fmt"
	"strconv"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// normalizer maps one generation of ledger records to a Package
type normalizer func(n *normalization) (*models.Package, error)

// normalizers is the closed table of known record generations
var normalizers = map[string]normalizer{
	"0.1": normalizeFilenameRecord,
	"0.2": normalizeStructuredRecord,
}

// normalization carries everything a normalizer needs about one record
type normalization struct {
	record  *Record
	meta    metadata
	hash    models.Hash
	albsURL string
}

// normalizeFilenameRecord handles generation 0.1 records, which only carry
// the package file name. NEVRA is parsed out of it and the epoch is unset.
func normalizeFilenameRecord(n *normalization) (*models.Package, error) {
	nevra, err := models.ParseFilename(n.record.Name)
	if err != nil {
		return nil, err
	}

	return n.build(nevra, "")
}

// normalizeStructuredRecord handles generation 0.2 records with explicit
// package fields.
func normalizeStructuredRecord(n *normalization) (*models.Package, error) {
	epoch, err := models.NormalizeEpoch(n.meta["epoch"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedRecord, err)
	}

	nevra := &models.NEVRA{Epoch: epoch}
	fields := []struct {
		key   string
		value *string
	}{
		{"name", &nevra.Name},
		{"version", &nevra.Version},
		{"release", &nevra.Release},
		{"arch", &nevra.Arch},
	}
	for _, f := range fields {
		if *f.value, err = n.meta.required(f.key); err != nil {
			return nil, err
		}
	}

	return n.build(nevra, n.meta.str("sourcerpm"))
}

func (n *normalization) build(nevra *models.NEVRA, sourceRPM string) (*models.Package, error) {
	source, err := n.source()
	if err != nil {
		return nil, err
	}

	timestamp := ""
	if n.record.Timestamp != 0 {
		timestamp = strconv.FormatInt(n.record.Timestamp, 10)
	}

	buildID := n.meta.str("build_id")
	buildURL := ""
	if buildID != "" && n.albsURL != "" {
		buildURL = fmt.Sprintf("%s/build/%s", n.albsURL, buildID)
	}

	return &models.Package{
		NEVRA:          nevra,
		SourceRPM:      sourceRPM,
		BuildTimestamp: n.record.Timestamp,
		Hashes:         []models.Hash{n.hash},
		PackageProperties: &models.PackageProperties{
			Epoch:     strconv.Itoa(nevra.Epoch),
			Version:   nevra.Version,
			Release:   nevra.Release,
			Arch:      nevra.Arch,
			BuildHost: n.meta.str("build_host"),
			SourceRPM: sourceRPM,
			Timestamp: timestamp,
		},
		BuildProperties: &models.PackageBuildProperties{
			TargetArch:  n.meta.str("build_arch"),
			PackageType: "rpm",
			BuildID:     buildID,
			BuildURL:    buildURL,
			Author:      n.meta.str("built_by"),
			Source:      source,
		},
		SBOMProperties: &models.SBOMProperties{
			LedgerHash: n.record.Hash,
		},
	}, nil
}

// source selects the provenance variant from the source_type discriminator
func (n *normalization) source() (models.SourceProperties, error) {
	switch sourceType := models.SourceType(n.meta.str("source_type")); sourceType {
	case models.SourceGit:
		return &models.GitSource{
			URL:              n.meta.str("git_url"),
			Commit:           n.meta.str("git_commit"),
			Ref:              n.meta.str("git_ref"),
			CommitLedgerHash: n.meta.str("alma_commit_sbom_hash"),
		}, nil
	case models.SourceSrpm:
		return &models.SrpmSource{
			URL:      n.meta.str("srpm_url"),
			Checksum: n.meta.str("srpm_sha256"),
			NEVRA:    n.meta.str("srpm_nevra"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownSourceType, sourceType)
	}
}
