// Package verifier runs the off-card bytecode verifier of an SDK.
package verifier

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

const mainClass = "com.sun.javacard.offcardverifier.Verifier"

// ErrNoExports is returned when the export path yields no export file.
var ErrNoExports = errors.New("no export files to verify against")

// Verifier runs the verifier shipped with one SDK.
type Verifier struct {
	kit    *sdk.SDK
	java   string
	runner buildsys.Runner
}

var _ buildsys.Verifier = (*Verifier)(nil)

// Option configures Verifier.
type Option func(*Verifier)

// WithJava sets a custom java launcher.
func WithJava(path string) Option {
	return func(v *Verifier) {
		v.java = path
	}
}

// WithOutput sets where verifier output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(v *Verifier) {
		v.runner.Stdout = stdout
		v.runner.Stderr = stderr
	}
}

// New creates a verifier using the tools of kit.
func New(kit *sdk.SDK, opts ...Option) *Verifier {
	v := &Verifier{kit: kit, java: buildsys.Java()}
	v.runner.Env = buildsys.KitEnv(kit)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks capPath against the export files found on exportPath.
func (v *Verifier) Verify(ctx context.Context, capPath string, exportPath []string) error {
	exps, err := Collect(exportPath)
	if err != nil {
		return err
	}
	args, err := v.Args(capPath, exps)
	if err != nil {
		return err
	}
	return v.runner.Run(ctx, v.java, args...)
}

// Args returns the java launcher arguments verifying capPath against exps.
func (v *Verifier) Args(capPath string, exps []string) ([]string, error) {
	if v.kit == nil || len(v.kit.ToolJars) == 0 {
		return nil, errors.New("verifier: no SDK tools")
	}
	var args []string
	if v.kit.Version.IsV3() {
		args = append(args, "-Djc.home="+v.kit.Root)
	}
	args = append(args, "-cp", buildsys.JoinPath(v.kit.ToolJars), mainClass, "-nobanner")
	args = append(args, exps...)
	return append(args, capPath), nil
}

// Collect expands exportPath into export files. Directories are searched
// recursively; missing entries are skipped. The result keeps first-seen
// order and holds no duplicates.
func Collect(exportPath []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, entry := range exportPath {
		fi, err := os.Stat(entry)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !fi.IsDir() {
			if strings.HasSuffix(entry, ".exp") {
				add(entry)
			}
			continue
		}
		var found []string
		err = filepath.WalkDir(entry, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".exp") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list export files in %s: %w", entry, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoExports
	}
	return out, nil
}

// ExtractExps copies every .exp entry of jar into dest, keeping the entry
// paths. It returns the number of files written.
func ExtractExps(jar, dest string) (int, error) {
	r, err := zip.OpenReader(jar)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", jar, err)
	}
	defer r.Close()

	n := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".exp") {
			continue
		}
		if !filepath.IsLocal(f.Name) {
			return n, fmt.Errorf("%s: illegal entry %q", jar, f.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if err := extract(f, target); err != nil {
			return n, fmt.Errorf("failed to extract %s from %s: %w", f.Name, jar, err)
		}
		n++
	}
	return n, nil
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
