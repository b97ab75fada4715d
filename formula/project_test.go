package formula

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestProject_Resolve(t *testing.T) {
	p := NewProject("/work/app")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"src", filepath.Join("/work/app", "src")},
		{"/abs/classes", "/abs/classes"},
	}
	for _, tt := range tests {
		if got := p.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProject_IsDirIsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jar"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "exps"), 0o755); err != nil {
		t.Fatal(err)
	}
	p := NewProject(dir)

	if !p.IsFile("a.jar") || p.IsDir("a.jar") {
		t.Error("a.jar should be a file")
	}
	if !p.IsDir("exps") || p.IsFile("exps") {
		t.Error("exps should be a directory")
	}
	if p.IsFile("missing") || p.IsDir("missing") {
		t.Error("missing path reported as existing")
	}
}

func TestProject_ReadFile(t *testing.T) {
	p := &Project{DirFS: fstest.MapFS{
		"jcbuild.toml": &fstest.MapFile{Data: []byte("jckit = \"sdk\"")},
	}}
	data, err := p.ReadFile("jcbuild.toml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "jckit = \"sdk\"" {
		t.Fatalf("ReadFile = %q", data)
	}
	if _, err := p.ReadFile("missing"); err == nil {
		t.Fatal("ReadFile(missing) should fail")
	}
}

func TestPackage_VerifyEnabled(t *testing.T) {
	var p Package
	if !p.VerifyEnabled() {
		t.Error("verify defaults to true")
	}
	off := false
	p.Verify = &off
	if p.VerifyEnabled() {
		t.Error("verify explicitly disabled")
	}
}
