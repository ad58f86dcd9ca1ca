package iso

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/AlmaLinux/alma-sbom/internal/models"
)

const (
	treeInfoPath   = ".treeinfo"
	expectedFamily = "AlmaLinux"
)

// Variant is an installable repository shipped inside the image
type Variant struct {
	Name     string
	Packages string // directory holding the variant's packages, relative to the image root
}

// TreeInfo is the subset of the .treeinfo descriptor used to describe an image
type TreeInfo struct {
	Family   string
	Version  string
	Variants []Variant
}

// ParseTreeInfo parses a .treeinfo descriptor
func ParseTreeInfo(data []byte) (*TreeInfo, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", treeInfoPath, err)
	}

	general, err := cfg.GetSection("general")
	if err != nil || !general.HasKey("family") {
		return nil, fmt.Errorf("%w: cannot detect OS family", models.ErrMalformedRecord)
	}
	info := &TreeInfo{Family: general.Key("family").String()}
	if info.Family != expectedFamily {
		return nil, fmt.Errorf("%w: image is %s, not %s", models.ErrUnexpectedFamily, info.Family, expectedFamily)
	}

	if !general.HasKey("version") {
		return nil, fmt.Errorf("%w: cannot detect OS version", models.ErrMalformedRecord)
	}
	info.Version = general.Key("version").String()

	var variants string
	switch {
	case general.HasKey("variants"):
		variants = general.Key("variants").String()
	case cfg.Section("tree").HasKey("variants"):
		variants = cfg.Section("tree").Key("variants").String()
	default:
		return nil, fmt.Errorf("%w: cannot detect image variants", models.ErrMalformedRecord)
	}

	for _, name := range strings.Split(variants, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		section, err := cfg.GetSection("variant-" + name)
		if err != nil || !section.HasKey("packages") {
			return nil, fmt.Errorf("%w: no package directory for variant %s", models.ErrMalformedRecord, name)
		}
		info.Variants = append(info.Variants, Variant{
			Name:     name,
			Packages: strings.Trim(section.Key("packages").String(), "/"),
		})
	}

	return info, nil
}

// imageLayouts maps the sorted variant set of each known layout to its image type
var imageLayouts = map[string]models.ImageType{
	"AppStream,BaseOS": models.ImageDVD,
	"Minimal":          models.ImageMinimal,
}

// ImageType classifies the image by the exact set of its variant names
func (t *TreeInfo) ImageType() (models.ImageType, error) {
	seen := make(map[string]bool, len(t.Variants))
	names := make([]string, 0, len(t.Variants))
	for _, v := range t.Variants {
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		names = append(names, v.Name)
	}
	sort.Strings(names)
	key := strings.Join(names, ",")

	imageType, ok := imageLayouts[key]
	if !ok {
		return "", fmt.Errorf("%w: variants [%s]", models.ErrUnknownImageType, key)
	}
	return imageType, nil
}
