package models

// Build is a set of packages produced together by the build system.
type Build struct {
	ID         string
	Author     string
	Packages   []*Package
	Properties *BuildProperties
}

// AppendPackage adds a package in discovery order
func (b *Build) AppendPackage(pkg *Package) {
	b.Packages = append(b.Packages, pkg)
}

// DocName returns the document name of the build
func (b *Build) DocName() string {
	return "build-" + b.ID
}

// PropertyList returns the flattened build properties
func (b *Build) PropertyList() []Property {
	return b.Properties.Properties()
}
