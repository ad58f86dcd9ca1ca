package spdx

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlmaLinux/alma-sbom/internal/formats"
	"github.com/AlmaLinux/alma-sbom/internal/models"
)

func bashPackage() *models.Package {
	return &models.Package{
		NEVRA:          &models.NEVRA{Name: "bash", Version: "5.1.8", Release: "9.el9", Arch: "x86_64"},
		SourceRPM:      "bash-5.1.8-9.el9.src.rpm",
		BuildTimestamp: 1714500330,
		Hashes:         []models.Hash{models.NewSHA256("05dc1b806bd5456d40e3d7f882ead037aaf480c596e83fbfb6ab86be74a2d8d1")},
		Licenses:       models.ParseLicenses("GPLv3+"),
		Summary:        "The GNU Bourne Again shell",
		PackageProperties: &models.PackageProperties{
			Epoch:   "0",
			Version: "5.1.8",
		},
	}
}

func newFormatter(t *testing.T, encoding formats.Encoding) *Formatter {
	f, err := NewFormatter(encoding)
	require.NoError(t, err)
	f.now = func() time.Time { return time.Date(2024, 4, 30, 18, 5, 30, 0, time.UTC) }
	return f
}

func render(t *testing.T, doc formats.Document) []byte {
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	return buf.Bytes()
}

// jsonDocument is the subset of the SPDX JSON layout checked by the tests
type jsonDocument struct {
	SPDXVersion       string `json:"spdxVersion"`
	DataLicense       string `json:"dataLicense"`
	Name              string `json:"name"`
	DocumentNamespace string `json:"documentNamespace"`
	CreationInfo      struct {
		Creators []string `json:"creators"`
		Created  string   `json:"created"`
	} `json:"creationInfo"`
	Packages []struct {
		SPDXID          string `json:"SPDXID"`
		Name            string `json:"name"`
		VersionInfo     string `json:"versionInfo"`
		LicenseDeclared string `json:"licenseDeclared"`
		LicenseComments string `json:"licenseComments"`
		BuiltDate       string `json:"builtDate"`
		PrimaryPurpose  string `json:"primaryPackagePurpose"`
		ExternalRefs    []struct {
			Category string `json:"referenceCategory"`
			Type     string `json:"referenceType"`
			Locator  string `json:"referenceLocator"`
		} `json:"externalRefs"`
		Checksums []struct {
			Algorithm string `json:"algorithm"`
			Value     string `json:"checksumValue"`
		} `json:"checksums"`
		Annotations []struct {
			Type    string `json:"annotationType"`
			Comment string `json:"comment"`
		} `json:"annotations"`
	} `json:"packages"`
	Relationships []struct {
		Element      string `json:"spdxElementId"`
		Related      string `json:"relatedSpdxElement"`
		Relationship string `json:"relationshipType"`
	} `json:"relationships"`
}

func decodeJSON(t *testing.T, doc formats.Document) jsonDocument {
	var out jsonDocument
	require.NoError(t, json.Unmarshal(render(t, doc), &out))
	return out
}

func TestNewFormatterRejectsEncoding(t *testing.T) {
	_, err := NewFormatter(formats.Encoding("rdf"))
	assert.Error(t, err)
}

func TestFromPackageJSON(t *testing.T) {
	doc, err := newFormatter(t, formats.EncodingJSON).FromPackage(bashPackage())
	require.NoError(t, err)

	out := decodeJSON(t, doc)
	assert.Equal(t, "SPDX-2.3", out.SPDXVersion)
	assert.Equal(t, "CC0-1.0", out.DataLicense)
	assert.Equal(t, "0:bash-5.1.8-9.el9", out.Name)
	assert.True(t, strings.HasPrefix(out.DocumentNamespace, "https://security.almalinux.org-0:bash-5.1.8-9.el9-"), out.DocumentNamespace)
	assert.Equal(t, "2024-04-30T18:05:30Z", out.CreationInfo.Created)
	assert.Contains(t, out.CreationInfo.Creators, "Organization: AlmaLinux OS Foundation")
	assert.Contains(t, out.CreationInfo.Creators, "Tool: AlmaLinux Build System 0.1")

	require.Len(t, out.Packages, 1)
	pkg := out.Packages[0]
	assert.Equal(t, "SPDXRef-0", pkg.SPDXID)
	assert.Equal(t, "bash", pkg.Name)
	assert.Equal(t, "0:5.1.8-9.el9", pkg.VersionInfo)
	assert.Equal(t, "NOASSERTION", pkg.LicenseDeclared)
	assert.Equal(t, "Declared license: GPLv3+", pkg.LicenseComments)
	assert.Equal(t, "2024-04-30T18:05:30Z", pkg.BuiltDate)
	assert.Equal(t, "LIBRARY", pkg.PrimaryPurpose)

	require.Len(t, pkg.ExternalRefs, 2)
	assert.Equal(t, "cpe23Type", pkg.ExternalRefs[0].Type)
	assert.Equal(t, "cpe:2.3:a:almalinux:bash:5.1.8-9.el9:*:*:*:*:*:*:*", pkg.ExternalRefs[0].Locator)
	assert.Equal(t, "purl", pkg.ExternalRefs[1].Type)
	assert.Equal(t, "pkg:rpm/almalinux/bash@5.1.8-9.el9?arch=x86_64&upstream=bash-5.1.8-9.el9.src.rpm", pkg.ExternalRefs[1].Locator)

	require.Len(t, pkg.Checksums, 1)
	assert.Equal(t, "SHA256", pkg.Checksums[0].Algorithm)

	var comments []string
	for _, a := range pkg.Annotations {
		assert.Equal(t, "OTHER", a.Type)
		comments = append(comments, a.Comment)
	}
	assert.Equal(t, []string{"almalinux:package:epoch=0", "almalinux:package:version=5.1.8"}, comments)

	require.Len(t, out.Relationships, 1)
	assert.Equal(t, "SPDXRef-DOCUMENT", out.Relationships[0].Element)
	assert.Equal(t, "SPDXRef-0", out.Relationships[0].Related)
	assert.Equal(t, "DESCRIBES", out.Relationships[0].Relationship)
}

func TestFromPackageParsedLicense(t *testing.T) {
	pkg := bashPackage()
	pkg.Licenses = models.ParseLicenses("MIT OR Apache-2.0")

	doc, err := newFormatter(t, formats.EncodingJSON).FromPackage(pkg)
	require.NoError(t, err)

	out := decodeJSON(t, doc)
	assert.Equal(t, "MIT OR Apache-2.0", out.Packages[0].LicenseDeclared)
	assert.Empty(t, out.Packages[0].LicenseComments)
}

func TestFromBuildRelationships(t *testing.T) {
	build := &models.Build{
		ID:         "11363",
		Author:     "eabdullin1 <eabdullin1@almalinux.org>",
		Properties: &models.BuildProperties{BuildID: "11363"},
	}
	build.AppendPackage(bashPackage())
	build.AppendPackage(bashPackage())

	doc, err := newFormatter(t, formats.EncodingJSON).FromBuild(build)
	require.NoError(t, err)

	out := decodeJSON(t, doc)
	require.Len(t, out.Packages, 3)
	assert.Equal(t, "build-11363", out.Packages[0].Name)
	assert.Equal(t, "FRAMEWORK", out.Packages[0].PrimaryPurpose)
	require.Len(t, out.Packages[0].Annotations, 1)
	assert.Equal(t, "almalinux:albs:build:ID=11363", out.Packages[0].Annotations[0].Comment)

	var rels []string
	for _, r := range out.Relationships {
		rels = append(rels, r.Element+" "+r.Relationship+" "+r.Related)
	}
	assert.Equal(t, []string{
		"SPDXRef-DOCUMENT DESCRIBES SPDXRef-0",
		"SPDXRef-0 CONTAINS SPDXRef-1",
		"SPDXRef-0 CONTAINS SPDXRef-2",
	}, rels)
}

func TestFromIsoRejectsIncompletePackage(t *testing.T) {
	iso := &models.Iso{ReleaseVersion: "9", ImageType: models.ImageMinimal}
	iso.AppendPackage(models.NullPackage())

	doc, err := newFormatter(t, formats.EncodingJSON).FromIso(iso)
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestTagValueCarriesAnnotationTargets(t *testing.T) {
	doc, err := newFormatter(t, formats.EncodingTagValue).FromPackage(bashPackage())
	require.NoError(t, err)

	out := string(render(t, doc))
	assert.Contains(t, out, "SPDXVersion: SPDX-2.3")
	assert.Contains(t, out, "PackageName: bash")
	assert.Contains(t, out, "AnnotationComment: almalinux:package:epoch=0")
	assert.Contains(t, out, "SPDXREF: SPDXRef-0")

	// the stored document is left untouched
	assert.Empty(t, doc.(*Document).SPDX.Annotations)
	assert.Len(t, doc.(*Document).SPDX.Packages[0].Annotations, 2)
}

func TestYAML(t *testing.T) {
	doc, err := newFormatter(t, formats.EncodingYAML).FromPackage(bashPackage())
	require.NoError(t, err)

	out := string(render(t, doc))
	assert.Contains(t, out, "spdxVersion: SPDX-2.3")
	assert.Contains(t, out, "name: bash")
}

func TestXML(t *testing.T) {
	iso := &models.Iso{ReleaseVersion: "9.4", ImageType: models.ImageDVD}
	iso.AppendPackage(bashPackage())

	doc, err := newFormatter(t, formats.EncodingXML).FromIso(iso)
	require.NoError(t, err)

	raw := render(t, doc)
	assert.True(t, bytes.HasPrefix(raw, []byte(xml.Header)))

	var out struct {
		XMLName  xml.Name `xml:"Document"`
		Name     string   `xml:"name"`
		Packages []struct {
			Name    string `xml:"name"`
			Purpose string `xml:"primaryPackagePurpose"`
		} `xml:"packages"`
		Relationships []struct {
			Type string `xml:"relationshipType"`
		} `xml:"relationships"`
	}
	require.NoError(t, xml.Unmarshal(raw, &out))
	assert.Equal(t, "AlmaLinux 9.4 DVD ISO", out.Name)
	require.Len(t, out.Packages, 2)
	assert.Equal(t, "OPERATING-SYSTEM", out.Packages[0].Purpose)
	assert.Equal(t, "bash", out.Packages[1].Name)
	require.Len(t, out.Relationships, 2)
	assert.Equal(t, "CONTAINS", out.Relationships[1].Type)
}
