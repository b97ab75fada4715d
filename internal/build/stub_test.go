package build

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/testutil"
	"github.com/goplus/jcbuild/pkgs/aid"
	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/buildsys/converter"
	"github.com/goplus/jcbuild/pkgs/capfile"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

// stubCompiler writes one empty class file per source file.
type stubCompiler struct {
	reqs []*buildsys.CompileRequest
}

func (c *stubCompiler) Compile(ctx context.Context, req *buildsys.CompileRequest) error {
	c.reqs = append(c.reqs, req)
	for _, root := range req.Sources {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, ".java") {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			dest := filepath.Join(req.Dest, strings.TrimSuffix(rel, ".java")+".class")
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			return os.WriteFile(dest, []byte("CAFEBABE"), 0o644)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stubConverter writes a small but well-formed CAP file, and export and
// listing files when they are requested.
type stubConverter struct {
	reqs []*buildsys.ConvertRequest

	// before runs first; a non-nil error is returned after a partial CAP
	// has been written.
	before func(ctx context.Context, req *buildsys.ConvertRequest) error
	// noCAP skips writing the CAP file.
	noCAP bool
	// classes are added under APPLET-INF/classes.
	classes map[string]string
}

func (c *stubConverter) Convert(ctx context.Context, req *buildsys.ConvertRequest) error {
	c.reqs = append(c.reqs, req)
	out := converter.OutputsOf(req.OutDir, req.PackageName)
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return err
	}
	if c.before != nil {
		if err := c.before(ctx, req); err != nil {
			os.WriteFile(out.CAP, []byte("PK partial"), 0o644)
			return err
		}
	}
	if c.noCAP {
		return nil
	}

	fixture := testutil.CAP{
		PackageName: req.PackageName,
		PackageAID:  req.PackageAID,
		Major:       1,
		Imports:     []capfile.Package{testutil.Framework(1, 6)},
		Classes:     c.classes,
	}
	for _, a := range req.Applets {
		fixture.Applets = append(fixture.Applets, a.AID)
	}
	if slices.Contains(req.Outputs, buildsys.OutputEXP) {
		fixture.Flags |= capfile.FlagExport
		if err := os.WriteFile(out.EXP, []byte("export of "+req.PackageName), 0o644); err != nil {
			return err
		}
	}
	if slices.Contains(req.Outputs, buildsys.OutputJCA) {
		if err := os.WriteFile(out.JCA, []byte("listing of "+req.PackageName), 0o644); err != nil {
			return err
		}
	}
	data, err := fixture.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(out.CAP, data, 0o644)
}

type verifyCall struct {
	kit        *sdk.SDK
	capPath    string
	exportPath []string
}

// stubVerifier records calls and fails with err.
type stubVerifier struct {
	calls []verifyCall
	err   error
}

func (v *stubVerifier) forKit(kit *sdk.SDK) buildsys.Verifier {
	return verifierFunc(func(ctx context.Context, capPath string, exportPath []string) error {
		if _, err := os.Stat(capPath); err != nil {
			return err
		}
		v.calls = append(v.calls, verifyCall{kit: kit, capPath: capPath, exportPath: exportPath})
		return v.err
	})
}

type verifierFunc func(ctx context.Context, capPath string, exportPath []string) error

func (f verifierFunc) Verify(ctx context.Context, capPath string, exportPath []string) error {
	return f(ctx, capPath, exportPath)
}

// -----------------------------------------------------------------------------

// fakeKit returns an SDK descriptor rooted in a temporary directory.
func fakeKit(t *testing.T, v sdk.Version) *sdk.SDK {
	t.Helper()
	root := t.TempDir()
	kit := &sdk.SDK{
		Version:      v,
		Root:         root,
		APIJars:      []string{filepath.Join(root, "lib", "api_classic.jar")},
		ToolJars:     []string{filepath.Join(root, "lib", "tools.jar")},
		CompilerJars: []string{filepath.Join(root, "lib", "tools.jar")},
		ExportDir:    filepath.Join(root, "api_export_files"),
	}
	if v == sdk.V310 {
		kit.ExportDir = filepath.Join(root, "api_export_files_3.1.0")
	}
	return kit
}

// detectOnly discovers kit at its root and nothing else. calls counts
// detections.
func detectOnly(kit *sdk.SDK, calls *int) sdk.DetectFunc {
	return func(root string) (*sdk.SDK, error) {
		if calls != nil {
			*calls++
		}
		if root == kit.Root {
			return kit, nil
		}
		return nil, sdk.ErrNotSDK
	}
}

type fixture struct {
	kit      *sdk.SDK
	proj     *formula.Project
	tmpRoot  string
	compiler *stubCompiler
	conv     *stubConverter
	verifier *stubVerifier
}

func newFixture(t *testing.T, v sdk.Version) *fixture {
	t.Helper()
	f := &fixture{
		kit:      fakeKit(t, v),
		proj:     formula.NewProject(t.TempDir()),
		tmpRoot:  filepath.Join(t.TempDir(), "tmp"),
		compiler: &stubCompiler{},
		conv:     &stubConverter{},
		verifier: &stubVerifier{},
	}
	return f
}

func (f *fixture) builder(opts ...Option) *Builder {
	base := []Option{
		WithDetect(detectOnly(f.kit, nil)),
		WithJCKit(f.kit.Root),
		WithTmp(""),
		WithTempRoot(f.tmpRoot),
		WithCompiler(f.compiler),
		WithConverter(f.conv),
		WithVerifier(f.verifier.forKit),
	}
	return New(append(base, opts...)...)
}

// mkdir creates a directory inside the project.
func (f *fixture) mkdir(t *testing.T, rel string) string {
	t.Helper()
	dir := f.proj.Resolve(rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// writeFile creates a file inside the project.
func (f *fixture) writeFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := f.proj.Resolve(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// assertNoTemps fails when a run left temporary directories behind.
func (f *fixture) assertNoTemps(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tmpRoot)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("temporary directory left behind: %s", e.Name())
	}
}

// caps lists the CAP files in the project directory.
func (f *fixture) caps(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.proj.Dir, "*.cap"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func testPackage() formula.Package {
	return formula.Package{
		Name:    "test.pkg",
		AID:     "0x010203040506",
		Version: "1.0",
		Classes: "classes",
		Applets: []formula.Applet{{Class: "test.pkg.MyApplet"}},
	}
}

func mustAID(t *testing.T, s string) aid.AID {
	t.Helper()
	id, err := aid.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
