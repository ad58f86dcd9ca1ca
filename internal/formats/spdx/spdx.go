package spdx

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
	"github.com/spdx/tools-golang/tagvalue"
	spdxyaml "github.com/spdx/tools-golang/yaml"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/models"
)

const (
	spdxVersion = "SPDX-2.3"
	noAssertion = "NOASSERTION"
	documentID  = common.ElementID("DOCUMENT")

	purposeLibrary   = "LIBRARY"
	purposeFramework = "FRAMEWORK"
	purposeOS        = "OPERATING-SYSTEM"

	relationshipDescribes = "DESCRIBES"
	relationshipContains  = "CONTAINS"
)

// annotator marks every property annotation
var annotator = common.Annotator{Annotator: "alma-sbom", AnnotatorType: "Tool"}

var checksumAlgorithms = map[models.HashAlgorithm]common.ChecksumAlgorithm{
	models.SHA256: common.SHA256,
}

// Formatter builds SPDX 2.3 documents
type Formatter struct {
	encoding formats.Encoding
	now      func() time.Time
}

// NewFormatter creates a formatter writing the given encoding
func NewFormatter(encoding formats.Encoding) (*Formatter, error) {
	switch encoding {
	case formats.EncodingJSON, formats.EncodingXML, formats.EncodingYAML, formats.EncodingTagValue:
	default:
		return nil, fmt.Errorf("spdx cannot be written as %s", encoding)
	}
	return &Formatter{encoding: encoding, now: time.Now}, nil
}

// Document is an SPDX document
type Document struct {
	SPDX     *v2_3.Document
	encoding formats.Encoding
	nextID   int
	created  string
}

// Write implements formats.Document
func (d *Document) Write(w io.Writer) error {
	var err error
	switch d.encoding {
	case formats.EncodingJSON:
		err = spdxjson.Write(d.SPDX, w)
	case formats.EncodingYAML:
		err = spdxyaml.Write(d.SPDX, w)
	case formats.EncodingTagValue:
		err = tagvalue.Write(d.tagValueDocument(), w)
	case formats.EncodingXML:
		err = writeXML(d.SPDX, w)
	default:
		err = fmt.Errorf("unsupported encoding %s", d.encoding)
	}
	if err != nil {
		return fmt.Errorf("failed to write SPDX document: %w", err)
	}
	return nil
}

// tagValueDocument moves package annotations to the document level, the
// only place where the tag-value form keeps their target identifier.
func (d *Document) tagValueDocument() *v2_3.Document {
	doc := *d.SPDX
	doc.Packages = make([]*v2_3.Package, 0, len(d.SPDX.Packages))
	doc.Annotations = append([]*v2_3.Annotation(nil), d.SPDX.Annotations...)

	for _, pkg := range d.SPDX.Packages {
		p := *pkg
		for i := range pkg.Annotations {
			a := pkg.Annotations[i]
			a.AnnotationSPDXIdentifier = common.MakeDocElementID("", string(pkg.PackageSPDXIdentifier))
			doc.Annotations = append(doc.Annotations, &a)
		}
		p.Annotations = nil
		doc.Packages = append(doc.Packages, &p)
	}
	return &doc
}

func (f *Formatter) newDocument(docName string) *Document {
	created := f.now().UTC().Format(time.RFC3339)

	creators := make([]common.Creator, 0, len(formats.Tools())+1)
	for _, t := range formats.Tools() {
		creators = append(creators, common.Creator{
			CreatorType: "Tool",
			Creator:     fmt.Sprintf("%s %s", t.Name, t.Version),
		})
	}
	creators = append(creators, common.Creator{CreatorType: "Organization", Creator: models.VendorName})

	return &Document{
		SPDX: &v2_3.Document{
			SPDXVersion:       spdxVersion,
			DataLicense:       models.SbomLicense,
			SPDXIdentifier:    documentID,
			DocumentName:      docName,
			DocumentNamespace: fmt.Sprintf("%s-%s-%s", models.Namespace, url.PathEscape(docName), uuid.New()),
			CreationInfo: &v2_3.CreationInfo{
				Creators: creators,
				Created:  created,
			},
		},
		encoding: f.encoding,
		created:  created,
	}
}

func (d *Document) packageID() common.ElementID {
	id := common.ElementID(strconv.Itoa(d.nextID))
	d.nextID++
	return id
}

func (d *Document) relate(a, b common.ElementID, relationship string) {
	d.SPDX.Relationships = append(d.SPDX.Relationships, &v2_3.Relationship{
		RefA:         common.MakeDocElementID("", string(a)),
		RefB:         common.MakeDocElementID("", string(b)),
		Relationship: relationship,
	})
}

func (d *Document) annotations(props []models.Property) []v2_3.Annotation {
	var out []v2_3.Annotation
	for _, p := range props {
		out = append(out, v2_3.Annotation{
			Annotator:         annotator,
			AnnotationDate:    d.created,
			AnnotationType:    "OTHER",
			AnnotationComment: fmt.Sprintf("%s=%s", p.Name, p.Value),
		})
	}
	return out
}

func (d *Document) addPackage(pkg *models.Package) (common.ElementID, error) {
	if err := pkg.Validate(); err != nil {
		return "", err
	}

	id := d.packageID()
	p := &v2_3.Package{
		PackageName:               pkg.NEVRA.Name,
		PackageSPDXIdentifier:     id,
		PackageVersion:            pkg.NEVRA.EVR(),
		PackageSupplier:           &common.Supplier{SupplierType: "Organization", Supplier: models.VendorName},
		PackageDownloadLocation:   noAssertion,
		FilesAnalyzed:             false,
		IsFilesAnalyzedTagPresent: true,
		PackageLicenseConcluded:   noAssertion,
		PackageLicenseDeclared:    noAssertion,
		PackageCopyrightText:      noAssertion,
		PackageSummary:            pkg.Summary,
		PackageDescription:        pkg.Description,
		PrimaryPackagePurpose:     purposeLibrary,
		PackageExternalReferences: []*v2_3.PackageExternalReference{
			{Category: "SECURITY", RefType: "cpe23Type", Locator: pkg.CPE()},
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: pkg.PURL()},
		},
		Annotations: d.annotations(pkg.Properties()),
	}

	for _, h := range pkg.Hashes {
		algorithm, ok := checksumAlgorithms[h.Algorithm]
		if !ok {
			continue
		}
		p.PackageChecksums = append(p.PackageChecksums, common.Checksum{Algorithm: algorithm, Value: h.Value})
	}

	if pkg.BuildTimestamp != 0 {
		p.BuiltDate = time.Unix(pkg.BuildTimestamp, 0).UTC().Format(time.RFC3339)
	}

	if pkg.Licenses.Parsed() {
		p.PackageLicenseDeclared = pkg.Licenses.Expression
	} else if pkg.Licenses != nil && pkg.Licenses.Expression != "" {
		p.PackageLicenseComments = "Declared license: " + pkg.Licenses.Expression
	}

	d.SPDX.Packages = append(d.SPDX.Packages, p)
	return id, nil
}

// FromPackage implements formats.Formatter
func (f *Formatter) FromPackage(pkg *models.Package) (formats.Document, error) {
	doc := f.newDocument(pkg.DocName())
	id, err := doc.addPackage(pkg)
	if err != nil {
		return nil, err
	}
	doc.relate(documentID, id, relationshipDescribes)
	return doc, nil
}

// FromBuild implements formats.Formatter
func (f *Formatter) FromBuild(build *models.Build) (formats.Document, error) {
	doc := f.newDocument(build.DocName())

	root := &v2_3.Package{
		PackageName:               build.DocName(),
		PackageSPDXIdentifier:     doc.packageID(),
		PackageSupplier:           &common.Supplier{SupplierType: "Organization", Supplier: models.VendorName},
		PackageDownloadLocation:   noAssertion,
		FilesAnalyzed:             false,
		IsFilesAnalyzedTagPresent: true,
		PrimaryPackagePurpose:     purposeFramework,
		Annotations:               doc.annotations(build.PropertyList()),
	}
	if build.Author != "" {
		root.PackageOriginator = &common.Originator{OriginatorType: "Person", Originator: build.Author}
	}

	if err := doc.withChildren(root, build.Packages); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromIso implements formats.Formatter
func (f *Formatter) FromIso(iso *models.Iso) (formats.Document, error) {
	doc := f.newDocument(iso.DocName())

	root := &v2_3.Package{
		PackageName:               iso.DocName(),
		PackageSPDXIdentifier:     doc.packageID(),
		PackageVersion:            iso.ReleaseVersion,
		PackageSupplier:           &common.Supplier{SupplierType: "Organization", Supplier: models.VendorName},
		PackageDownloadLocation:   noAssertion,
		FilesAnalyzed:             false,
		IsFilesAnalyzedTagPresent: true,
		PrimaryPackagePurpose:     purposeOS,
	}

	if err := doc.withChildren(root, iso.Packages); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) withChildren(root *v2_3.Package, pkgs []*models.Package) error {
	d.SPDX.Packages = append(d.SPDX.Packages, root)
	d.relate(documentID, root.PackageSPDXIdentifier, relationshipDescribes)

	for _, pkg := range pkgs {
		id, err := d.addPackage(pkg)
		if err != nil {
			return err
		}
		d.relate(root.PackageSPDXIdentifier, id, relationshipContains)
	}
	return nil
}
