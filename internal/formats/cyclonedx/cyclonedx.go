package cyclonedx

import (
	"fmt"
	"io"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// specVersion is the schema version every document is written with
const specVersion = cdx.SpecVersion1_6

var fileFormats = map[formats.Encoding]cdx.BOMFileFormat{
	formats.EncodingJSON: cdx.BOMFileFormatJSON,
	formats.EncodingXML:  cdx.BOMFileFormatXML,
}

// Formatter builds CycloneDX documents
type Formatter struct {
	format cdx.BOMFileFormat
	now    func() time.Time
}

// NewFormatter creates a formatter writing the given encoding
func NewFormatter(encoding formats.Encoding) (*Formatter, error) {
	format, ok := fileFormats[encoding]
	if !ok {
		return nil, fmt.Errorf("cyclonedx cannot be written as %s", encoding)
	}
	return &Formatter{format: format, now: time.Now}, nil
}

// Document is a CycloneDX bill of materials
type Document struct {
	BOM    *cdx.BOM
	format cdx.BOMFileFormat
}

// Write implements formats.Document
func (d *Document) Write(w io.Writer) error {
	encoder := cdx.NewBOMEncoder(w, d.format)
	encoder.SetPretty(true)
	if err := encoder.EncodeVersion(d.BOM, specVersion); err != nil {
		return fmt.Errorf("failed to encode CycloneDX document: %w", err)
	}
	return nil
}

func (f *Formatter) newDocument(root cdx.Component) *Document {
	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()
	bom.Metadata = &cdx.Metadata{
		Timestamp: f.now().UTC().Format(time.RFC3339),
		Tools:     tools(),
		Component: &root,
	}
	return &Document{BOM: bom, format: f.format}
}

// FromPackage implements formats.Formatter
func (f *Formatter) FromPackage(pkg *models.Package) (formats.Document, error) {
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return f.newDocument(componentFromPackage(pkg)), nil
}

// FromBuild implements formats.Formatter
func (f *Formatter) FromBuild(build *models.Build) (formats.Document, error) {
	root := cdx.Component{
		BOMRef:     build.DocName(),
		Type:       cdx.ComponentTypeFramework,
		Name:       build.DocName(),
		Author:     build.Author,
		Publisher:  models.VendorName,
		Properties: properties(build.PropertyList()),
	}

	doc := f.newDocument(root)
	components, err := packageComponents(build.Packages)
	if err != nil {
		return nil, err
	}
	doc.BOM.Components = components
	return doc, nil
}

// FromIso implements formats.Formatter
func (f *Formatter) FromIso(iso *models.Iso) (formats.Document, error) {
	root := cdx.Component{
		BOMRef:      iso.DocName(),
		Type:        cdx.ComponentTypeOS,
		Name:        "AlmaLinux",
		Version:     iso.ReleaseVersion,
		Description: iso.DocName(),
		Publisher:   models.VendorName,
	}

	doc := f.newDocument(root)
	components, err := packageComponents(iso.Packages)
	if err != nil {
		return nil, err
	}
	doc.BOM.Components = components
	return doc, nil
}

func tools() *cdx.ToolsChoice {
	var components []cdx.Component
	for _, t := range formats.Tools() {
		components = append(components, cdx.Component{
			Type:    cdx.ComponentTypeApplication,
			Group:   t.Vendor,
			Name:    t.Name,
			Version: t.Version,
		})
	}
	return &cdx.ToolsChoice{Components: &components}
}

func packageComponents(pkgs []*models.Package) (*[]cdx.Component, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}
	components := make([]cdx.Component, 0, len(pkgs))
	refs := make(map[string]int, len(pkgs))
	for _, pkg := range pkgs {
		if err := pkg.Validate(); err != nil {
			return nil, err
		}
		c := componentFromPackage(pkg)
		c.BOMRef = uniqueRef(refs, c.BOMRef)
		components = append(components, c)
	}
	return &components, nil
}

// uniqueRef keeps bom-refs unique within a document. The first component
// with a given package URL uses it as is, later ones get an ordinal suffix.
func uniqueRef(seen map[string]int, ref string) string {
	seen[ref]++
	n := seen[ref]
	if n == 1 {
		return ref
	}
	for {
		candidate := fmt.Sprintf("%s-%d", ref, n)
		if seen[candidate] == 0 {
			seen[candidate]++
			return candidate
		}
		n++
	}
}

func componentFromPackage(pkg *models.Package) cdx.Component {
	c := cdx.Component{
		BOMRef:      pkg.PURL(),
		Type:        cdx.ComponentTypeLibrary,
		Name:        pkg.NEVRA.Name,
		Version:     pkg.NEVRA.EVR(),
		Publisher:   models.VendorName,
		Description: pkg.Summary,
		CPE:         pkg.CPE(),
		PackageURL:  pkg.PURL(),
		Properties:  properties(pkg.Properties()),
	}

	if len(pkg.Hashes) > 0 {
		hashes := make([]cdx.Hash, 0, len(pkg.Hashes))
		for _, h := range pkg.Hashes {
			hashes = append(hashes, cdx.Hash{Algorithm: cdx.HashAlgorithm(h.Algorithm), Value: h.Value})
		}
		c.Hashes = &hashes
	}

	if pkg.Licenses != nil {
		c.Licenses = licenses(pkg.Licenses)
	}
	return c
}

// licenses uses the SPDX id of a single-license expression and the whole
// expression for compound ones. Unparsed text becomes a named license.
func licenses(l *models.Licenses) *cdx.Licenses {
	var choices cdx.Licenses
	if id, ok := l.SingleID(); ok {
		choices = append(choices, cdx.LicenseChoice{License: &cdx.License{ID: id}})
	} else if l.Parsed() {
		choices = append(choices, cdx.LicenseChoice{Expression: l.Expression})
	} else if l.Expression != "" {
		choices = append(choices, cdx.LicenseChoice{License: &cdx.License{Name: l.Expression}})
	}
	if len(choices) == 0 {
		return nil
	}
	return &choices
}

func properties(props []models.Property) *[]cdx.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]cdx.Property, 0, len(props))
	for _, p := range props {
		out = append(out, cdx.Property{Name: p.Name, Value: p.Value})
	}
	return &out
}
