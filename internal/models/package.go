package models

import "fmt"

// Package represents an RPM package with its metadata
type Package struct {
	// Identity
	NEVRA     *NEVRA
	SourceRPM string

	// Package information
	BuildTimestamp int64
	Hashes         []Hash
	Licenses       *Licenses
	Summary        string
	Description    string

	// Provenance, only known when the package came through the ledger
	PackageProperties *PackageProperties
	BuildProperties   *PackageBuildProperties
	SBOMProperties    *SBOMProperties
}

// NullPackage returns a package without any data. It is the identity
// element of Merge.
func NullPackage() *Package {
	return &Package{}
}

// IsNull reports whether the package carries no data at all.
func (p *Package) IsNull() bool {
	return p.NEVRA == nil &&
		p.SourceRPM == "" &&
		p.BuildTimestamp == 0 &&
		len(p.Hashes) == 0 &&
		p.Licenses == nil &&
		p.Summary == "" &&
		p.Description == "" &&
		p.PackageProperties == nil &&
		p.BuildProperties == nil &&
		p.SBOMProperties == nil
}

// Merge combines two views of the same package. For every field the value of
// p wins when it is set, otherwise the value of other is used.
func (p *Package) Merge(other *Package) *Package {
	if other == nil {
		other = NullPackage()
	}

	merged := *p
	if merged.NEVRA == nil {
		merged.NEVRA = other.NEVRA
	}
	if merged.SourceRPM == "" {
		merged.SourceRPM = other.SourceRPM
	}
	if merged.BuildTimestamp == 0 {
		merged.BuildTimestamp = other.BuildTimestamp
	}
	if len(merged.Hashes) == 0 {
		merged.Hashes = other.Hashes
	}
	if merged.Licenses == nil {
		merged.Licenses = other.Licenses
	}
	if merged.Summary == "" {
		merged.Summary = other.Summary
	}
	if merged.Description == "" {
		merged.Description = other.Description
	}
	if merged.PackageProperties == nil {
		merged.PackageProperties = other.PackageProperties
	}
	if merged.BuildProperties == nil {
		merged.BuildProperties = other.BuildProperties
	}
	if merged.SBOMProperties == nil {
		merged.SBOMProperties = other.SBOMProperties
	}
	return &merged
}

// DocName returns the document name of the package, its NEVR string.
func (p *Package) DocName() string {
	if p.NEVRA == nil {
		return ""
	}
	return p.NEVRA.NEVR()
}

// CPE returns the CPE 2.3 identifier of the package
func (p *Package) CPE() string {
	if p.NEVRA == nil {
		return ""
	}
	return p.NEVRA.CPE()
}

// PURL returns the package-URL of the package
func (p *Package) PURL() string {
	if p.NEVRA == nil {
		return ""
	}
	return p.NEVRA.PURL(p.SourceRPM)
}

// Properties returns package, build and SBOM properties in that order.
func (p *Package) Properties() []Property {
	var props []Property
	props = append(props, p.PackageProperties.Properties()...)
	props = append(props, p.BuildProperties.Properties()...)
	props = append(props, p.SBOMProperties.Properties()...)
	return props
}

// Validate checks that the package is fully normalized.
func (p *Package) Validate() error {
	if p.NEVRA == nil {
		return fmt.Errorf("package has no NEVRA")
	}
	if p.NEVRA.Name == "" || p.NEVRA.Version == "" || p.NEVRA.Release == "" || p.NEVRA.Arch == "" {
		return fmt.Errorf("package %s has an incomplete NEVRA", p.NEVRA)
	}
	return nil
}
