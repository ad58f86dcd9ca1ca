package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/iso"
	"github.com/AlmaLinux/alma-sbom/internal/runner"
	"github.com/AlmaLinux/alma-sbom/internal/utils"
)

func newPackageCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Generate the SBOM of a single RPM package",
		Long: `Describes one RPM package, either by the SHA-256 hash it was notarized
with or by a local package file. A local file missing from the ledger is
described from its RPM header alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, sbomType, err := loadConfig(v)
			if err != nil {
				return err
			}
			config.RPMPackageHash = v.GetString("rpm-package-hash")
			config.RPMPackage = v.GetString("rpm-package")

			switch {
			case config.RPMPackageHash == "" && config.RPMPackage == "":
				return invalidConfig(fmt.Errorf("one of rpm-package-hash or rpm-package is required"))
			case config.RPMPackageHash != "" && config.RPMPackage != "":
				return invalidConfig(fmt.Errorf("rpm-package-hash and rpm-package are mutually exclusive"))
			case config.RPMPackageHash != "":
				if err := utils.ValidateSHA256(config.RPMPackageHash); err != nil {
					return invalidConfig(fmt.Errorf("rpm-package-hash: %w", err))
				}
			default:
				if err := fileExists(config.RPMPackage); err != nil {
					return invalidConfig(fmt.Errorf("rpm-package: %w", err))
				}
			}

			logrus.Debugf("Configuration: %s, output %s", sbomType, config.OutputFile)
			return run(cmd.Context(), config, sbomType, func(ctx context.Context, r *runner.Runner, f formats.Formatter) (formats.Document, error) {
				if config.RPMPackageHash != "" {
					pkg, err := r.PackageByHash(ctx, config.RPMPackageHash)
					if err != nil {
						return nil, err
					}
					return f.FromPackage(pkg)
				}
				pkg, err := r.PackageByFile(ctx, config.RPMPackage)
				if err != nil {
					return nil, err
				}
				return f.FromPackage(pkg)
			})
		},
	}

	cmd.Flags().String("rpm-package-hash", "", "SHA-256 hash of a notarized RPM package")
	cmd.Flags().String("rpm-package", "", "Path to a local RPM package")
	bindFlags(v, cmd)

	return cmd
}

func newBuildCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the SBOM of a build of the AlmaLinux Build System",
		Long: `Describes every RPM package produced by a build. All packages must be
notarized in the ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, sbomType, err := loadConfig(v)
			if err != nil {
				return err
			}
			config.BuildID = v.GetString("build-id")
			if config.BuildID == "" {
				return invalidConfig(fmt.Errorf("build-id is required"))
			}

			return run(cmd.Context(), config, sbomType, func(ctx context.Context, r *runner.Runner, f formats.Formatter) (formats.Document, error) {
				build, err := r.Build(ctx, config.BuildID)
				if err != nil {
					return nil, err
				}
				return f.FromBuild(build)
			})
		},
	}

	cmd.Flags().String("build-id", "", "ID of the build")
	bindFlags(v, cmd)

	return cmd
}

func newIsoCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iso",
		Short: "Generate the SBOM of an installation image",
		Long: `Describes an AlmaLinux DVD or Minimal installation image and every RPM
package shipped in its variants.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, sbomType, err := loadConfig(v)
			if err != nil {
				return err
			}
			config.ISOImage = v.GetString("iso-image")
			if config.ISOImage == "" {
				return invalidConfig(fmt.Errorf("iso-image is required"))
			}
			if err := fileExists(config.ISOImage); err != nil {
				return invalidConfig(fmt.Errorf("iso-image: %w", err))
			}

			return run(cmd.Context(), config, sbomType, func(ctx context.Context, r *runner.Runner, f formats.Formatter) (formats.Document, error) {
				image, err := iso.OpenImage(config.ISOImage)
				if err != nil {
					return nil, err
				}
				defer image.Close()

				result, err := r.Iso(ctx, image)
				if err != nil {
					return nil, err
				}
				return f.FromIso(result)
			})
		},
	}

	cmd.Flags().String("iso-image", "", "Path to the ISO image")
	bindFlags(v, cmd)

	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		logrus.Fatalf("failed to bind %s flags: %v", cmd.Name(), err)
	}
}
