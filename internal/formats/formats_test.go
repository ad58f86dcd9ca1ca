package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSbomType(t *testing.T) {
	tests := []struct {
		in       string
		expected SbomType
		wantErr  bool
	}{
		{in: "spdx-json", expected: SbomType{RecordSPDX, EncodingJSON}},
		{in: "spdx-xml", expected: SbomType{RecordSPDX, EncodingXML}},
		{in: "spdx-yaml", expected: SbomType{RecordSPDX, EncodingYAML}},
		{in: "spdx-tagvalue", expected: SbomType{RecordSPDX, EncodingTagValue}},
		{in: "cyclonedx-json", expected: SbomType{RecordCycloneDX, EncodingJSON}},
		{in: "cyclonedx-xml", expected: SbomType{RecordCycloneDX, EncodingXML}},
		{in: "cyclonedx-yaml", wantErr: true},
		{in: "cyclonedx-tagvalue", wantErr: true},
		{in: "swid-xml", wantErr: true},
		{in: "spdx", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSbomType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{
		"cyclonedx-json",
		"cyclonedx-xml",
		"spdx-json",
		"spdx-tagvalue",
		"spdx-xml",
		"spdx-yaml",
	}, SupportedTypes())
}

func TestTools(t *testing.T) {
	tools := Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "alma-sbom", tools[1].Name)
	assert.Equal(t, Version, tools[1].Version)
}
