package ledger

import (
	"fmt"
	"strconv"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// metadata wraps the free-form Metadata map of a ledger record
type metadata map[string]interface{}

// str returns the value of key as a string. Missing keys and nulls yield "".
func (m metadata) str(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// required returns the value of key and fails when it is missing or empty
func (m metadata) required(key string) (string, error) {
	v := m.str(key)
	if v == "" {
		return "", fmt.Errorf("%w: missing %q", models.ErrMalformedRecord, key)
	}
	return v, nil
}

// version returns the schema version tag of the record
func (m metadata) version() (string, error) {
	if v := m.str("sbom_api_ver"); v != "" {
		return v, nil
	}
	if v := m.str("sbom_api"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: schema version cannot be detected", models.ErrMalformedRecord)
}
