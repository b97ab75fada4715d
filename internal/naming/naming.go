// Package naming renders CAP output file names from templates.
//
// Placeholders:
//
//	%n  common name: the applet class for a single-applet CAP without
//	    exports, otherwise the last package name component
//	%p  package name
//	%a  package AID
//	%H  load file data hash (SHA-256, lowercase hex)
//	%h  first 8 characters of %H
//	%j  guessed card platform version, or "unknown"
//	%g  guessed GlobalPlatform version, or "unknown"
//
// Any other character, including a '%' not followed by a placeholder letter,
// is copied unchanged.
package naming

import (
	"strings"

	"github.com/goplus/jcbuild/pkgs/capfile"
)

const unknown = "unknown"

// Meta holds the values a template can refer to.
type Meta struct {
	CommonName     string
	PackageName    string
	PackageAID     string
	Hash           string
	JavaCard       string
	GlobalPlatform string
}

// FromCAP collects template values from a parsed CAP file. appletClass is
// the class of the first applet in the package description; it names
// single-applet CAPs.
func FromCAP(f *capfile.File, appletClass string) Meta {
	m := Meta{
		PackageName: f.PackageName,
		PackageAID:  f.Package.AID.String(),
		Hash:        strings.ToLower(f.LoadFileDataHash().Encoded()),
		JavaCard:    unknown,
	}
	if len(f.AppletAIDs) == 1 && !f.HasFlag(capfile.FlagExport) && appletClass != "" {
		m.CommonName = simple(appletClass)
	} else {
		m.CommonName = simple(f.PackageName)
	}
	if v, ok := f.GuessJavaCardVersion(); ok {
		m.JavaCard = v
	}
	m.GlobalPlatform = unknown
	if v, ok := f.GuessGlobalPlatformVersion(); ok {
		m.GlobalPlatform = v
	}
	return m
}

// Render expands the placeholders of template. Substituted values are never
// scanned again.
func Render(template string, m Meta) string {
	var sb strings.Builder
	sb.Grow(len(template) + 64)
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 == len(template) {
			sb.WriteByte(c)
			continue
		}
		if v, ok := m.lookup(template[i+1]); ok {
			sb.WriteString(v)
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func (m Meta) lookup(c byte) (string, bool) {
	switch c {
	case 'n':
		return m.CommonName, true
	case 'p':
		return m.PackageName, true
	case 'a':
		return m.PackageAID, true
	case 'H':
		return m.Hash, true
	case 'h':
		if len(m.Hash) > 8 {
			return m.Hash[:8], true
		}
		return m.Hash, true
	case 'j':
		return orUnknown(m.JavaCard), true
	case 'g':
		return orUnknown(m.GlobalPlatform), true
	}
	return "", false
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func simple(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
