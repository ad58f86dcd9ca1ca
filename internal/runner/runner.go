package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/iso"
	"github.com/AlmaLinux/alma-sbom/internal/ledger"
	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// Ledger looks packages up in the trust ledger
type Ledger interface {
	CollectByHash(ctx context.Context, hash string) (*models.Package, error)
	CollectByFile(ctx context.Context, path string) (*models.Package, error)
}

// PackageReader reads a package straight from a local file
type PackageReader interface {
	CollectFromFile(path string) (*models.Package, error)
}

// BuildSource fetches build manifests
type BuildSource interface {
	CollectBuild(ctx context.Context, buildID string) (*models.Build, []string, error)
}

// Runner wires the collectors together for each kind of document
type Runner struct {
	ledger Ledger
	files  PackageReader
	builds BuildSource
}

// New creates a runner. builds may be nil when no build is collected.
func New(ledger Ledger, files PackageReader, builds BuildSource) *Runner {
	return &Runner{ledger: ledger, files: files, builds: builds}
}

// PackageByHash collects a package known to the ledger
func (r *Runner) PackageByHash(ctx context.Context, hash string) (*models.Package, error) {
	log.Infof("Collecting package %s from the ledger", hash)
	return r.ledger.CollectByHash(ctx, hash)
}

// PackageByFile collects a local package file. Ledger data wins over the
// file header. A package missing from the ledger is described from its
// header alone.
func (r *Runner) PackageByFile(ctx context.Context, path string) (*models.Package, error) {
	fromLedger, err := r.ledger.CollectByFile(ctx, path)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			return nil, err
		}
		log.Warnf("%s is not notarized, describing it from its header only", path)
		fromLedger = models.NullPackage()
	}

	fromFile, err := r.files.CollectFromFile(path)
	if err != nil {
		return nil, err
	}

	pkg := fromLedger.Merge(fromFile)
	if err := pkg.Validate(); err != nil {
		return nil, models.NewError(models.ErrMissingData, path, err)
	}
	return pkg, nil
}

// Build collects every RPM of a build from the ledger. All artifacts are
// attempted and their failures are returned together.
func (r *Runner) Build(ctx context.Context, buildID string) (*models.Build, error) {
	if r.builds == nil {
		return nil, fmt.Errorf("no build source configured")
	}

	build, hashes, err := r.builds.CollectBuild(ctx, buildID)
	if err != nil {
		return nil, err
	}

	var result *multierror.Error
	for i, hash := range hashes {
		log.Infof("Processing package #%d", i+1)
		pkg, err := r.ledger.CollectByHash(ctx, hash)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		build.AppendPackage(pkg)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("build %s: %w", buildID, err)
	}
	return build, nil
}

// Iso collects an installation image and every package it ships
func (r *Runner) Iso(ctx context.Context, image *iso.Collector) (*models.Iso, error) {
	result, err := image.CollectIso()
	if err != nil {
		return nil, err
	}

	it, err := image.Packages()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	for i := 1; it.Next(); i++ {
		entry := it.Entry()
		log.Infof("Processing package #%d: %s/%s", i, entry.Variant, entry.Name)

		pkg, err := r.PackageByFile(ctx, entry.Path)
		it.Release()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		result.AppendPackage(pkg)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
