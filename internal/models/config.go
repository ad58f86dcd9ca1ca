package models

// Config contains configuration for SBOM generation
type Config struct {
	// Output
	OutputFile string
	FileFormat string // <record>-<encoding>, e.g. spdx-json

	// Build system
	AlbsURL string

	// Ledger
	ImmudbUsername      string
	ImmudbPassword      string
	ImmudbDatabase      string
	ImmudbAddress       string
	ImmudbPublicKeyFile string

	// Signing
	GPGKeyPath    string
	GPGPassphrase string

	// Subject, exactly one is set per run
	RPMPackageHash string
	RPMPackage     string
	BuildID        string
	ISOImage       string
}
