// Package testutil builds fixtures shared by package tests: synthetic CAP
// files and SDK trees.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/jcbuild/pkgs/aid"
	"github.com/goplus/jcbuild/pkgs/capfile"
)

// CAP describes a synthetic CAP file. Only the components the reader looks
// at are filled with meaningful content.
type CAP struct {
	PackageName string // dotted
	PackageAID  aid.AID
	Major       int
	Minor       int
	Flags       int
	Applets     []aid.AID
	Imports     []capfile.Package
	// Classes adds entries under APPLET-INF/classes, as produced for 3.x
	// debug builds.
	Classes map[string]string
}

// Bytes encodes c as a CAP (zip) file.
func (c CAP) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	dir := strings.ReplaceAll(c.PackageName, ".", "/") + "/javacard/"

	flags := c.Flags
	if len(c.Applets) > 0 {
		flags |= capfile.FlagApplet
	}
	header := []byte{0xDE, 0xCA, 0xFF, 0xED, 2, 2, byte(flags)}
	header = append(header, byte(c.Minor), byte(c.Major))
	header = appendLV(header, c.PackageAID)
	header = appendLV(header, []byte(strings.ReplaceAll(c.PackageName, ".", "/")))

	comps := []struct {
		name string
		tag  byte
		body []byte
	}{
		{"Header", capfile.TagHeader, header},
		{"Directory", capfile.TagDirectory, make([]byte, 8)},
		{"Import", capfile.TagImport, c.importBody()},
		{"Method", capfile.TagMethod, []byte{0, 0x11, 0x22, 0x33}},
	}
	if len(c.Applets) > 0 {
		comps = append(comps, struct {
			name string
			tag  byte
			body []byte
		}{"Applet", capfile.TagApplet, c.appletBody()})
	}
	for _, comp := range comps {
		fw, err := w.Create(dir + comp.name + ".cap")
		if err != nil {
			return nil, err
		}
		raw := []byte{comp.tag, 0, 0}
		binary.BigEndian.PutUint16(raw[1:], uint16(len(comp.body)))
		if _, err := fw.Write(append(raw, comp.body...)); err != nil {
			return nil, err
		}
	}
	for name, content := range c.Classes {
		fw, err := w.Create("APPLET-INF/classes/" + name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCAP writes c to path, creating parent directories.
func WriteCAP(t testing.TB, path string, c CAP) {
	t.Helper()
	data, err := c.Bytes()
	if err != nil {
		t.Fatalf("encode CAP: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write CAP: %v", err)
	}
}

func (c CAP) appletBody() []byte {
	b := []byte{byte(len(c.Applets))}
	for _, a := range c.Applets {
		b = appendLV(b, a)
		b = append(b, 0, 0x10)
	}
	return b
}

func (c CAP) importBody() []byte {
	b := []byte{byte(len(c.Imports))}
	for _, p := range c.Imports {
		b = append(b, byte(p.Minor), byte(p.Major))
		b = appendLV(b, p.AID)
	}
	return b
}

func appendLV(b, v []byte) []byte {
	b = append(b, byte(len(v)))
	return append(b, v...)
}

// Framework returns the import of javacard.framework at major.minor.
func Framework(major, minor int) capfile.Package {
	return capfile.Package{AID: aid.AID{0xA0, 0, 0, 0, 0x62, 1, 1}, Major: major, Minor: minor}
}
