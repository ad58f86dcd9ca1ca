package models

import (
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

const (
	orLaterSuffix = "-or-later"
	withOperator  = " WITH "
)

// Licenses holds a package license expression and, when the expression is
// valid SPDX syntax, the simple expressions it references. Each entry is a
// license identifier optionally followed by a "+" or a WITH exception.
type Licenses struct {
	IDs        []string
	Expression string
}

// ParseLicenses parses a free-text license field. An expression that is not
// a valid SPDX expression keeps only its text.
func ParseLicenses(expression string) *Licenses {
	licenses := &Licenses{Expression: expression}
	if expression == "" {
		return licenses
	}

	ids, err := spdxexp.ExtractLicenses(expression)
	if err != nil {
		return licenses
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = normalizeLicense(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		licenses.IDs = append(licenses.IDs, id)
	}
	return licenses
}

// normalizeLicense drops the "+" the parser appends to identifiers that
// already carry the -or-later form, so GPL-2.0+ and GPL-2.0-or-later both
// come back as GPL-2.0-or-later.
func normalizeLicense(id string) string {
	license, exception, hasException := strings.Cut(id, withOperator)
	if strings.HasSuffix(license, orLaterSuffix+"+") {
		license = strings.TrimSuffix(license, "+")
	}
	if hasException {
		return license + withOperator + exception
	}
	return license
}

// Parsed reports whether the expression was recognised as SPDX syntax.
func (l *Licenses) Parsed() bool {
	return l != nil && len(l.IDs) > 0
}

// SingleID returns the license identifier when the expression names exactly
// one license with no "+" and no exception.
func (l *Licenses) SingleID() (string, bool) {
	if !l.Parsed() || len(l.IDs) != 1 {
		return "", false
	}
	id := l.IDs[0]
	if strings.HasSuffix(id, "+") || strings.Contains(id, withOperator) {
		return "", false
	}
	return id, true
}
