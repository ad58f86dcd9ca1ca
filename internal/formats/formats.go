package formats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// Record is an SBOM schema
type Record string

const (
	RecordCycloneDX Record = "cyclonedx"
	RecordSPDX      Record = "spdx"
)

// Encoding is a serialization of a schema
type Encoding string

const (
	EncodingJSON     Encoding = "json"
	EncodingXML      Encoding = "xml"
	EncodingYAML     Encoding = "yaml"
	EncodingTagValue Encoding = "tagvalue"
)

// compatibility lists the encodings each schema can be written in
var compatibility = map[Record][]Encoding{
	RecordSPDX:      {EncodingJSON, EncodingXML, EncodingYAML, EncodingTagValue},
	RecordCycloneDX: {EncodingJSON, EncodingXML},
}

// SbomType is a validated schema and encoding pair such as spdx-json
type SbomType struct {
	Record   Record
	Encoding Encoding
}

// DefaultSbomType is used when no file format is configured
var DefaultSbomType = SbomType{Record: RecordSPDX, Encoding: EncodingJSON}

// ParseSbomType parses "<record>-<encoding>" and checks the pair is supported
func ParseSbomType(s string) (SbomType, error) {
	record, encoding, ok := strings.Cut(s, "-")
	if !ok {
		return SbomType{}, fmt.Errorf("invalid SBOM type %q, use <record>-<encoding>", s)
	}

	t := SbomType{Record: Record(record), Encoding: Encoding(encoding)}
	encodings, ok := compatibility[t.Record]
	if !ok {
		return SbomType{}, fmt.Errorf("unknown SBOM record type %q", record)
	}
	for _, e := range encodings {
		if e == t.Encoding {
			return t, nil
		}
	}
	return SbomType{}, fmt.Errorf("%s cannot be written as %q, supported types: %s",
		record, encoding, strings.Join(SupportedTypes(), ", "))
}

// String returns the <record>-<encoding> form
func (t SbomType) String() string {
	return fmt.Sprintf("%s-%s", t.Record, t.Encoding)
}

// SupportedTypes returns every valid SBOM type
func SupportedTypes() []string {
	var types []string
	for record, encodings := range compatibility {
		for _, e := range encodings {
			types = append(types, SbomType{Record: record, Encoding: e}.String())
		}
	}
	sort.Strings(types)
	return types
}

// Document is a populated SBOM ready to be serialized
type Document interface {
	// Write serializes the document to w
	Write(w io.Writer) error
}

// Formatter builds documents of one schema
type Formatter interface {
	FromPackage(pkg *models.Package) (Document, error)
	FromBuild(build *models.Build) (Document, error)
	FromIso(iso *models.Iso) (Document, error)
}
