package rpm

import (
	"fmt"
	"os"
	"strings"

	"github.com/sassoftware/go-rpmutils"
	log "github.com/sirupsen/logrus"

	"github.com/AlmaLinux/alma-sbom/internal/models"
	"github.com/AlmaLinux/alma-sbom/internal/utils"
)

// Collector reads package metadata straight from RPM files
type Collector struct{}

// NewCollector creates a new local package collector
func NewCollector() *Collector {
	return &Collector{}
}

// CollectFromFile parses the RPM header of path and digests the whole file.
// The result never carries ledger provenance.
func (c *Collector) CollectFromFile(path string) (*models.Package, error) {
	ok, err := IsPackage(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, err)
	}
	if !ok {
		return nil, models.NewError(models.ErrPackageParse, path, fmt.Errorf("file is not an RPM package"))
	}

	checksum, err := utils.CalculateChecksum(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, fmt.Errorf("failed to calculate checksum: %w", err))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, err)
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return nil, models.NewError(models.ErrPackageParse, path, fmt.Errorf("failed to read RPM header: %w", err))
	}

	epoch, err := models.NormalizeEpoch(getIntTag(hdr, rpmutils.EPOCH))
	if err != nil {
		return nil, models.NewError(models.ErrPackageParse, path, err)
	}

	pkg := &models.Package{
		NEVRA: &models.NEVRA{
			Name:    getStringTag(hdr, rpmutils.NAME),
			Epoch:   epoch,
			Version: getStringTag(hdr, rpmutils.VERSION),
			Release: getStringTag(hdr, rpmutils.RELEASE),
			Arch:    getStringTag(hdr, rpmutils.ARCH),
		},
		SourceRPM:      getStringTag(hdr, rpmutils.SOURCERPM),
		BuildTimestamp: getIntTag(hdr, rpmutils.BUILDTIME),
		Hashes:         []models.Hash{models.NewSHA256(checksum.SHA256())},
		Summary:        getStringTag(hdr, rpmutils.SUMMARY),
		Description:    getStringTag(hdr, rpmutils.DESCRIPTION),
	}

	if license := getStringTag(hdr, rpmutils.LICENSE); license != "" {
		pkg.Licenses = models.ParseLicenses(license)
		if !pkg.Licenses.Parsed() {
			log.Debugf("License %q of %s is not a valid SPDX expression", license, path)
		}
	}

	if err := pkg.Validate(); err != nil {
		return nil, models.NewError(models.ErrPackageParse, path, err)
	}
	return pkg, nil
}

// getStringTag safely gets a string tag from the header
func getStringTag(hdr *rpmutils.RpmHeader, tag int) string {
	val, err := hdr.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	}

	return ""
}

// getIntTag safely gets the first value of an integer tag. Missing tags yield 0.
func getIntTag(hdr *rpmutils.RpmHeader, tag int) int64 {
	val, err := hdr.Get(tag)
	if err != nil {
		return 0
	}

	switch v := val.(type) {
	case []int:
		if len(v) > 0 {
			return int64(v[0])
		}
	case []uint32:
		if len(v) > 0 {
			return int64(v[0])
		}
	case []uint64:
		if len(v) > 0 {
			return int64(v[0])
		}
	case []uint16:
		if len(v) > 0 {
			return int64(v[0])
		}
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
