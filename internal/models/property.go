package models

// Property is a single namespaced name/value pair attached to a component.
type Property struct {
	Name  string
	Value string
}

// Property names. They are consumed by external tooling and must not change.
const (
	PropPackageEpoch     = "almalinux:package:epoch"
	PropPackageVersion   = "almalinux:package:version"
	PropPackageRelease   = "almalinux:package:release"
	PropPackageArch      = "almalinux:package:arch"
	PropPackageBuildHost = "almalinux:package:buildhost"
	PropPackageSourceRPM = "almalinux:package:sourcerpm"
	PropPackageTimestamp = "almalinux:package:timestamp"

	PropBuildID          = "almalinux:albs:build:ID"
	PropBuildURL         = "almalinux:albs:build:URL"
	PropBuildAuthor      = "almalinux:albs:build:author"
	PropBuildPackageType = "almalinux:albs:build:packageType"
	PropBuildTargetArch  = "almalinux:albs:build:targetArch"
	PropBuildTimestamp   = "almalinux:albs:build:timestamp"

	PropSourceType            = "almalinux:albs:build:source:type"
	PropSourceGitCommit       = "almalinux:albs:build:source:gitCommit"
	PropSourceGitCommitLedger = "almalinux:albs:build:source:gitCommitImmudbHash"
	PropSourceGitRef          = "almalinux:albs:build:source:gitRef"
	PropSourceGitURL          = "almalinux:albs:build:source:gitURL"
	PropSourceSrpmURL         = "almalinux:albs:build:source:srpmURL"
	PropSourceSrpmChecksum    = "almalinux:albs:build:source:srpmChecksum"
	PropSourceSrpmNEVRA       = "almalinux:albs:build:source:srpmNEVRA"

	PropSBOMLedgerHash = "almalinux:sbom:immudbHash"
)

// flatten keeps declaration order and drops properties without a value.
func flatten(props ...Property) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if p.Value == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PackageProperties describes an RPM package as recorded in the ledger.
type PackageProperties struct {
	Epoch     string
	Version   string
	Release   string
	Arch      string
	BuildHost string
	SourceRPM string
	Timestamp string
}

// Properties returns the group as a flat property list
func (p *PackageProperties) Properties() []Property {
	if p == nil {
		return nil
	}
	return flatten(
		Property{PropPackageEpoch, p.Epoch},
		Property{PropPackageVersion, p.Version},
		Property{PropPackageRelease, p.Release},
		Property{PropPackageArch, p.Arch},
		Property{PropPackageBuildHost, p.BuildHost},
		Property{PropPackageSourceRPM, p.SourceRPM},
		Property{PropPackageTimestamp, p.Timestamp},
	)
}

// SourceType discriminates the origin of the sources a package was built from.
type SourceType string

const (
	SourceGit  SourceType = "git"
	SourceSrpm SourceType = "srpm"
)

// SourceProperties is implemented by GitSource and SrpmSource only.
type SourceProperties interface {
	Type() SourceType
	Properties() []Property
}

// GitSource is a build from a version-control checkout.
type GitSource struct {
	URL              string
	Commit           string
	Ref              string
	CommitLedgerHash string
}

// Type implements SourceProperties
func (s *GitSource) Type() SourceType { return SourceGit }

// Properties implements SourceProperties
func (s *GitSource) Properties() []Property {
	return flatten(
		Property{PropSourceType, string(SourceGit)},
		Property{PropSourceGitCommit, s.Commit},
		Property{PropSourceGitCommitLedger, s.CommitLedgerHash},
		Property{PropSourceGitRef, s.Ref},
		Property{PropSourceGitURL, s.URL},
	)
}

// SrpmSource is a build from an existing source RPM.
type SrpmSource struct {
	URL      string
	Checksum string
	NEVRA    string
}

// Type implements SourceProperties
func (s *SrpmSource) Type() SourceType { return SourceSrpm }

// Properties implements SourceProperties
func (s *SrpmSource) Properties() []Property {
	return flatten(
		Property{PropSourceType, string(SourceSrpm)},
		Property{PropSourceSrpmURL, s.URL},
		Property{PropSourceSrpmChecksum, s.Checksum},
		Property{PropSourceSrpmNEVRA, s.NEVRA},
	)
}

// PackageBuildProperties describes the build that produced a package.
type PackageBuildProperties struct {
	TargetArch  string
	PackageType string
	BuildID     string
	BuildURL    string
	Author      string
	Source      SourceProperties
}

// Properties returns the group as a flat property list
func (b *PackageBuildProperties) Properties() []Property {
	if b == nil {
		return nil
	}
	props := flatten(
		Property{PropBuildID, b.BuildID},
		Property{PropBuildURL, b.BuildURL},
		Property{PropBuildAuthor, b.Author},
		Property{PropBuildPackageType, b.PackageType},
		Property{PropBuildTargetArch, b.TargetArch},
	)
	if b.Source != nil {
		props = append(props, b.Source.Properties()...)
	}
	return props
}

// BuildProperties describes a whole build.
type BuildProperties struct {
	BuildID   string
	BuildURL  string
	Timestamp string
}

// Properties returns the group as a flat property list
func (b *BuildProperties) Properties() []Property {
	if b == nil {
		return nil
	}
	return flatten(
		Property{PropBuildID, b.BuildID},
		Property{PropBuildURL, b.BuildURL},
		Property{PropBuildTimestamp, b.Timestamp},
	)
}

// SBOMProperties records where the SBOM data came from.
type SBOMProperties struct {
	LedgerHash string
}

// Properties returns the group as a flat property list
func (s *SBOMProperties) Properties() []Property {
	if s == nil {
		return nil
	}
	return flatten(Property{PropSBOMLedgerHash, s.LedgerHash})
}
