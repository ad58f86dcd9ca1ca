package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/albs"
	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/formats/cyclonedx"
	"github.com/AlmaLinux/alma-sbom/internal/formats/spdx"
	"github.com/AlmaLinux/alma-sbom/internal/ledger"
	"github.com/AlmaLinux/alma-sbom/internal/models"
	"github.com/AlmaLinux/alma-sbom/internal/output"
	"github.com/AlmaLinux/alma-sbom/internal/rpm"
	"github.com/AlmaLinux/alma-sbom/internal/runner"
	"github.com/AlmaLinux/alma-sbom/internal/signer"
)

// collectFunc gathers the subject of a command and turns it into a document
type collectFunc func(ctx context.Context, r *runner.Runner, f formats.Formatter) (formats.Document, error)

func newFormatter(t formats.SbomType) (formats.Formatter, error) {
	switch t.Record {
	case formats.RecordCycloneDX:
		f, err := cyclonedx.NewFormatter(t.Encoding)
		if err != nil {
			return nil, err
		}
		return f, nil
	case formats.RecordSPDX:
		f, err := spdx.NewFormatter(t.Encoding)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("no formatter for %s", t)
	}
}

func newWriter(config *models.Config) (*output.Writer, error) {
	var s signer.Signer
	if config.GPGKeyPath != "" {
		gpgSigner, err := signer.NewGPGSigner(config.GPGKeyPath, config.GPGPassphrase)
		if err != nil {
			return nil, invalidConfig(fmt.Errorf("failed to initialize GPG signer: %w", err))
		}
		logrus.Info("GPG signer initialized")
		s = gpgSigner
	}
	return output.NewWriter(config.OutputFile, s)
}

func run(ctx context.Context, config *models.Config, sbomType formats.SbomType, collect collectFunc) error {
	formatter, err := newFormatter(sbomType)
	if err != nil {
		return invalidConfig(err)
	}

	writer, err := newWriter(config)
	if err != nil {
		return err
	}

	client, err := ledger.NewImmudbClient(ctx, ledger.ImmudbConfig{
		Username:      config.ImmudbUsername,
		Password:      config.ImmudbPassword,
		Database:      config.ImmudbDatabase,
		Address:       config.ImmudbAddress,
		PublicKeyFile: config.ImmudbPublicKeyFile,
	})
	if err != nil {
		return models.NewError(models.ErrLedger, config.ImmudbAddress, err)
	}
	defer func() {
		if err := client.Close(ctx); err != nil {
			logrus.Warnf("Failed to close immudb session: %v", err)
		}
	}()

	r := runner.New(
		ledger.NewCollector(client, config.AlbsURL),
		rpm.NewCollector(),
		albs.NewCollector(albs.NewClient(config.AlbsURL)),
	)

	doc, err := collect(ctx, r, formatter)
	if err != nil {
		return err
	}

	logrus.Infof("Writing %s document", sbomType)
	return writer.Write(doc)
}
