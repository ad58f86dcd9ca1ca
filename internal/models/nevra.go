package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/package-url/packageurl-go"
)

const (
	// Vendor is the vendor segment used in CPE and package-URL identifiers.
	Vendor = "almalinux"
	// VendorName is the organization producing the documents.
	VendorName = "AlmaLinux OS Foundation"
	// SbomLicense is the data license of every produced document.
	SbomLicense = "CC0-1.0"
	// Namespace is the base of SPDX document namespaces.
	Namespace = "https://security.almalinux.org"

	rpmSuffix = ".rpm"
)

// NEVRA identifies a package build by name, epoch, version, release and
// architecture. An unset epoch is represented as 0.
type NEVRA struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string
}

// NormalizeEpoch maps the epoch spellings found in ledger records and RPM
// headers to the canonical integer form. nil, "", "None" and "(none)" all
// mean unset and yield 0.
func NormalizeEpoch(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case []int:
		if len(v) == 0 {
			return 0, nil
		}
		return v[0], nil
	case string:
		switch strings.TrimSpace(v) {
		case "", "None", "(none)":
			return 0, nil
		}
		epoch, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid epoch %q: %w", v, err)
		}
		return epoch, nil
	default:
		return 0, fmt.Errorf("invalid epoch of type %T", raw)
	}
}

// ParseFilename splits an RPM file name such as bash-4.4.20-4.el8_6.x86_64.rpm
// into its NEVRA parts. File names carry no epoch, so the result has epoch 0.
func ParseFilename(filename string) (*NEVRA, error) {
	base := strings.TrimSuffix(filename, rpmSuffix)

	dot := strings.LastIndex(base, ".")
	if dot <= 0 || dot == len(base)-1 {
		return nil, fmt.Errorf("%w: no architecture in package file name %q", ErrMalformedFilename, filename)
	}
	arch := base[dot+1:]
	rest := base[:dot]

	dash := strings.LastIndex(rest, "-")
	if dash <= 0 {
		return nil, fmt.Errorf("%w: no release in package file name %q", ErrMalformedFilename, filename)
	}
	release := rest[dash+1:]
	rest = rest[:dash]

	dash = strings.LastIndex(rest, "-")
	if dash <= 0 {
		return nil, fmt.Errorf("%w: no version in package file name %q", ErrMalformedFilename, filename)
	}

	return &NEVRA{
		Name:    rest[:dash],
		Version: rest[dash+1:],
		Release: release,
		Arch:    arch,
	}, nil
}

// String returns E:N-V-R.A
func (n NEVRA) String() string {
	return fmt.Sprintf("%s.%s", n.NEVR(), n.Arch)
}

// NEVR returns E:N-V-R
func (n NEVRA) NEVR() string {
	return fmt.Sprintf("%d:%s-%s-%s", n.Epoch, n.Name, n.Version, n.Release)
}

// EVR returns E:V-R
func (n NEVRA) EVR() string {
	return fmt.Sprintf("%d:%s-%s", n.Epoch, n.Version, n.Release)
}

// CPE returns the CPE 2.3 formatted string binding of the package.
func (n NEVRA) CPE() string {
	var b strings.Builder
	b.WriteString("cpe:2.3:a:")
	b.WriteString(Vendor)
	b.WriteByte(':')
	b.WriteString(EscapeCPE(n.Name))
	b.WriteByte(':')
	if n.Epoch != 0 {
		b.WriteString(strconv.Itoa(n.Epoch))
		b.WriteString(`\:`)
	}
	b.WriteString(EscapeCPE(n.Version))
	b.WriteByte('-')
	b.WriteString(EscapeCPE(n.Release))
	b.WriteString(":*:*:*:*:*:*:*")
	return b.String()
}

// PURL returns the package-URL of the package. upstream is the source RPM
// file name and is left out when empty.
func (n NEVRA) PURL(upstream string) string {
	qualifiers := packageurl.Qualifiers{
		{Key: "arch", Value: n.Arch},
	}
	if n.Epoch != 0 {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "epoch", Value: strconv.Itoa(n.Epoch)})
	}
	if upstream != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "upstream", Value: upstream})
	}

	purl := packageurl.NewPackageURL(
		packageurl.TypeRPM,
		Vendor,
		n.Name,
		n.Version+"-"+n.Release,
		qualifiers,
		"",
	)
	return purl.ToString()
}

func cpeAllowed(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-'
}

// EscapeCPE backslash-escapes every character outside [A-Za-z0-9._-].
// Sequences that are already escaped are kept as they are.
func EscapeCPE(part string) string {
	runes := []rune(part)
	var b strings.Builder
	b.Grow(len(part))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && !cpeAllowed(runes[i+1]) {
			b.WriteRune(r)
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		if !cpeAllowed(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
