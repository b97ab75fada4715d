package capfile_test

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/jcbuild/internal/testutil"
	"github.com/goplus/jcbuild/pkgs/aid"
	"github.com/goplus/jcbuild/pkgs/capfile"
)

func TestParse(t *testing.T) {
	fixture := testutil.CAP{
		PackageName: "com.example.pkg",
		PackageAID:  aid.AID{1, 2, 3, 4, 5, 6},
		Major:       1,
		Minor:       0,
		Applets:     []aid.AID{{1, 2, 3, 4, 5, 6, 1}},
		Imports: []capfile.Package{
			testutil.Framework(1, 6),
			{AID: aid.AID{0xA0, 0, 0, 1, 0x51, 0}, Major: 1, Minor: 6},
		},
	}
	data, err := fixture.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	f, err := capfile.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.PackageName != "com.example.pkg" {
		t.Errorf("PackageName = %q", f.PackageName)
	}
	if f.Package.AID.String() != "010203040506" || f.Package.VersionString() != "1.0" {
		t.Errorf("Package = %s %s", f.Package.AID, f.Package.VersionString())
	}
	if len(f.AppletAIDs) != 1 || f.AppletAIDs[0].String() != "01020304050601" {
		t.Errorf("AppletAIDs = %v", f.AppletAIDs)
	}
	if !slices.Equal(f.FlagNames(), []string{"applets"}) {
		t.Errorf("FlagNames = %v", f.FlagNames())
	}
	if f.HasFlag(capfile.FlagExport) {
		t.Error("unexpected exports flag")
	}
	if v, ok := f.GuessJavaCardVersion(); !ok || v != "3.0.5" {
		t.Errorf("GuessJavaCardVersion = %q, %v", v, ok)
	}
	if v, ok := f.GuessGlobalPlatformVersion(); !ok || v != "2.3" {
		t.Errorf("GuessGlobalPlatformVersion = %q, %v", v, ok)
	}

	h := f.LoadFileDataHash()
	if h.Algorithm() != "sha256" || len(h.Encoded()) != 64 {
		t.Errorf("LoadFileDataHash = %s", h)
	}
	if strings.ToLower(h.Encoded()) != h.Encoded() {
		t.Errorf("hash should be lowercase hex: %s", h.Encoded())
	}
}

func TestHashIgnoresDebugClasses(t *testing.T) {
	base := testutil.CAP{PackageName: "a.b", PackageAID: aid.AID{1, 2, 3, 4, 5}, Major: 1}
	withClasses := base
	withClasses.Classes = map[string]string{"a/b/C.class": "cafebabe"}

	dir := t.TempDir()
	p1 := filepath.Join(dir, "1.cap")
	p2 := filepath.Join(dir, "2.cap")
	testutil.WriteCAP(t, p1, base)
	testutil.WriteCAP(t, p2, withClasses)

	f1, err := capfile.Open(p1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f2, err := capfile.Open(p2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f1.LoadFileDataHash() != f2.LoadFileDataHash() {
		t.Error("load file data hash must not depend on APPLET-INF entries")
	}
	if _, ok := f1.GuessJavaCardVersion(); ok {
		t.Error("no framework import, guess should fail")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := capfile.Parse([]byte("not a zip")); !errors.Is(err, capfile.ErrNotCAP) {
		t.Errorf("Parse(garbage) error = %v, want ErrNotCAP", err)
	}
}
