package cli

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/output"
)

const (
	defaultAlbsURL        = "https://build.almalinux.org"
	defaultImmudbAddress  = "localhost:3322"
	defaultImmudbDatabase = "defaultdb"
)

// envReplacer maps flag names to environment variables, immudb-username
// is read from IMMUDB_USERNAME
var envReplacer = strings.NewReplacer("-", "_")

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "alma-sbom",
		Short: "Generate SBOM documents for AlmaLinux packages, builds and images",
		Long: `alma-sbom describes an RPM package, a build of the AlmaLinux Build System
or an installation image as a CycloneDX or SPDX document.

Package metadata is taken from the immudb ledger where the build system
notarizes every artifact, and from the RPM headers of local files.

Supported formats:
  ` + strings.Join(formats.SupportedTypes(), ", "),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			if v.GetBool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	flags.String("output-file", output.Stdout, "Output file, - for stdout. A .gz or .xz suffix compresses the document")
	flags.String("file-format", formats.DefaultSbomType.String(), "Document format, one of "+strings.Join(formats.SupportedTypes(), ", "))

	flags.String("albs-url", defaultAlbsURL, "Base URL of the AlmaLinux Build System")

	flags.String("immudb-username", "", "immudb username (env IMMUDB_USERNAME)")
	flags.String("immudb-password", "", "immudb password (env IMMUDB_PASSWORD)")
	flags.String("immudb-database", defaultImmudbDatabase, "immudb database (env IMMUDB_DATABASE)")
	flags.String("immudb-address", defaultImmudbAddress, "immudb address as host[:port] (env IMMUDB_ADDRESS)")
	flags.String("immudb-public-key-file", "", "Public key verifying the immudb server state signature (env IMMUDB_PUBLIC_KEY_FILE)")

	flags.StringP("gpg-key", "k", "", "Path to a GPG private key, writes a detached signature next to the output file")
	flags.StringP("gpg-passphrase", "p", "", "GPG key passphrase")

	if err := v.BindPFlags(flags); err != nil {
		logrus.Fatalf("failed to bind flags: %v", err)
	}

	// Add subcommands
	rootCmd.AddCommand(newPackageCmd(v))
	rootCmd.AddCommand(newBuildCmd(v))
	rootCmd.AddCommand(newIsoCmd(v))

	return rootCmd
}
