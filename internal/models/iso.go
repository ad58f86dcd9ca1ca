package models

import "fmt"

// ImageType is the layout of an installation image.
type ImageType string

const (
	ImageDVD     ImageType = "DVD"
	ImageMinimal ImageType = "Minimal"
)

// Iso is an installation image and the packages it embeds.
type Iso struct {
	ReleaseVersion string
	ImageType      ImageType
	Packages       []*Package
}

// AppendPackage adds a package in discovery order
func (i *Iso) AppendPackage(pkg *Package) {
	i.Packages = append(i.Packages, pkg)
}

// DocName returns the document name of the image
func (i *Iso) DocName() string {
	return fmt.Sprintf("AlmaLinux %s %s ISO", i.ReleaseVersion, i.ImageType)
}
