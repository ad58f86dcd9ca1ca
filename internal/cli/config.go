package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/models"
	"github.com/AlmaLinux/alma-sbom/internal/output"
)

// loadConfig reads the global settings and checks them together, so that
// every problem is reported at once
func loadConfig(v *viper.Viper) (*models.Config, formats.SbomType, error) {
	config := &models.Config{
		OutputFile:          v.GetString("output-file"),
		FileFormat:          v.GetString("file-format"),
		AlbsURL:             v.GetString("albs-url"),
		ImmudbUsername:      v.GetString("immudb-username"),
		ImmudbPassword:      v.GetString("immudb-password"),
		ImmudbDatabase:      v.GetString("immudb-database"),
		ImmudbAddress:       v.GetString("immudb-address"),
		ImmudbPublicKeyFile: v.GetString("immudb-public-key-file"),
		GPGKeyPath:          v.GetString("gpg-key"),
		GPGPassphrase:       v.GetString("gpg-passphrase"),
	}

	var result *multierror.Error

	if config.OutputFile == "" {
		config.OutputFile = output.Stdout
	}

	sbomType, err := formats.ParseSbomType(config.FileFormat)
	if err != nil {
		result = multierror.Append(result, err)
	}

	if u, err := url.Parse(config.AlbsURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("albs-url %q is not an http(s) URL", config.AlbsURL))
	}

	if config.ImmudbUsername == "" {
		result = multierror.Append(result, fmt.Errorf("immudb-username is required"))
	}
	if config.ImmudbPassword == "" {
		result = multierror.Append(result, fmt.Errorf("immudb-password is required"))
	}
	if config.ImmudbDatabase == "" {
		result = multierror.Append(result, fmt.Errorf("immudb-database is required"))
	}
	if config.ImmudbAddress == "" {
		result = multierror.Append(result, fmt.Errorf("immudb-address is required"))
	}
	if config.ImmudbPublicKeyFile != "" {
		if err := fileExists(config.ImmudbPublicKeyFile); err != nil {
			result = multierror.Append(result, fmt.Errorf("immudb-public-key-file: %w", err))
		}
	}

	if config.GPGKeyPath != "" {
		if config.OutputFile == output.Stdout {
			result = multierror.Append(result, fmt.Errorf("gpg-key requires output-file, signatures cannot be written to stdout"))
		}
		if err := fileExists(config.GPGKeyPath); err != nil {
			result = multierror.Append(result, fmt.Errorf("gpg-key: %w", err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, formats.SbomType{}, invalidConfig(err)
	}
	return config, sbomType, nil
}

func invalidConfig(err error) error {
	return models.NewError(models.ErrInvalidConfig, "", err)
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
