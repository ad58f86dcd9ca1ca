package formats

import (
	"github.com/AlmaLinux/alma-sbom/internal/ledger"
	"github.com/AlmaLinux/alma-sbom/internal/models"
)

// Version of alma-sbom, set at build time with -ldflags "-X ...formats.Version=..."
var Version = "0.0.1"

// Tool is a program that took part in producing an SBOM
type Tool struct {
	Vendor  string
	Name    string
	Version string
}

// Tools returns the provenance tool list recorded in every document
func Tools() []Tool {
	return []Tool{
		{Vendor: models.VendorName, Name: "AlmaLinux Build System", Version: "0.1"},
		{Vendor: models.VendorName, Name: "alma-sbom", Version: Version},
		{Vendor: models.VendorName, Name: "Immudb Wrapper", Version: ledger.Version()},
	}
}
