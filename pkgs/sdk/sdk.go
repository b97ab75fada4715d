// Package sdk discovers card SDK installations and decides which kit/target
// pairings can build a package.
package sdk

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotSDK is returned by Detect when a directory is not a usable SDK.
var ErrNotSDK = errors.New("not a usable SDK")

// SDK describes one SDK installation. It is immutable once detected.
type SDK struct {
	Version Version
	Root    string

	// APIJars is the compile classpath for packages built against this SDK.
	APIJars []string
	// ToolJars is the classpath of the converter and verifier.
	ToolJars []string
	// CompilerJars is the annotation processor path used by 3.0.4+ kits.
	CompilerJars []string
	// ExportDir holds the export files of the SDK API packages.
	ExportDir string
}

func (s *SDK) String() string {
	return fmt.Sprintf("%s SDK in %s", s.Version, s.Root)
}

// Detect inspects root and returns the SDK installed there.
func Detect(root string) (*SDK, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotSDK, root)
	}
	v, err := detectVersion(abs)
	if err != nil {
		return nil, err
	}
	return layout(abs, v), nil
}

// Target returns the view of kit that builds for version v. Only a 3.1.0 kit
// carries API files of other generations; for any other kit, or when v is
// the kit's own version, kit itself is returned.
func (s *SDK) Target(v Version) *SDK {
	if s.Version != V310 || v == s.Version {
		return s
	}
	t := layout(s.Root, V310)
	t.Version = v
	t.APIJars = existing(
		filepath.Join(s.Root, "lib", "api_classic-"+v.String()+".jar"),
		filepath.Join(s.Root, "lib", "api_classic_annotations-"+v.String()+".jar"),
	)
	t.ExportDir = filepath.Join(s.Root, "api_export_files_"+v.String())
	return t
}

func detectVersion(root string) (Version, error) {
	lib := filepath.Join(root, "lib")
	switch {
	case isFile(filepath.Join(lib, "tools.jar")):
		for _, v := range []Version{V310, V305, V304} {
			if isFile(filepath.Join(lib, "api_classic-"+v.String()+".jar")) {
				return v, nil
			}
		}
		api := filepath.Join(lib, "api_classic.jar")
		if !isFile(api) {
			return 0, fmt.Errorf("%w: %s has tools.jar but no api_classic.jar", ErrNotSDK, root)
		}
		rel, err := manifestVersion(api)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", api, err)
		}
		if v, ok := Closest(rel); ok && v.IsV3() {
			return v, nil
		}
		return 0, fmt.Errorf("%w: unknown 3.x release %q in %s", ErrNotSDK, rel, root)
	case isFile(filepath.Join(lib, "api21.jar")):
		return V212, nil
	case isFile(filepath.Join(lib, "converter.jar")):
		// 2.2.2 added extended length APDUs.
		ok, err := jarHas(filepath.Join(lib, "api.jar"), "javacardx/apdu/ExtendedLength.class")
		if err != nil {
			return 0, fmt.Errorf("failed to inspect api.jar: %w", err)
		}
		if ok {
			return V222, nil
		}
		return V221, nil
	case isFile(filepath.Join(lib, "api.jar")):
		return V211, nil
	}
	return 0, fmt.Errorf("%w: no SDK libraries under %s", ErrNotSDK, lib)
}

func layout(root string, v Version) *SDK {
	lib := filepath.Join(root, "lib")
	s := &SDK{Version: v, Root: root}
	switch {
	case v == V310:
		s.APIJars = existing(
			filepath.Join(lib, "api_classic-3.1.0.jar"),
			filepath.Join(lib, "api_classic_annotations-3.1.0.jar"),
		)
		s.ToolJars = []string{filepath.Join(lib, "tools.jar")}
		s.CompilerJars = existing(filepath.Join(lib, "tools.jar"), filepath.Join(lib, "api_classic_annotations-3.1.0.jar"))
		s.ExportDir = filepath.Join(root, "api_export_files_3.1.0")
	case v.IsV3():
		s.APIJars = existing(
			filepath.Join(lib, "api_classic-"+v.String()+".jar"),
			filepath.Join(lib, "api_classic.jar"),
			filepath.Join(lib, "api_classic_annotations.jar"),
		)
		s.ToolJars = []string{filepath.Join(lib, "tools.jar")}
		s.CompilerJars = existing(filepath.Join(lib, "tools.jar"), filepath.Join(lib, "api_classic_annotations.jar"))
		s.ExportDir = filepath.Join(root, "api_export_files")
	case v == V212:
		s.APIJars = []string{filepath.Join(lib, "api21.jar")}
		s.ToolJars = existing(filepath.Join(lib, "converter.jar"), filepath.Join(lib, "verifier.jar"))
		s.ExportDir = filepath.Join(root, "api21_export_files")
	case v == V211:
		s.APIJars = []string{filepath.Join(lib, "api.jar")}
		s.ToolJars = existing(filepath.Join(lib, "converter.jar"), filepath.Join(lib, "verifier.jar"))
		s.ExportDir = filepath.Join(root, "api21_export_files")
	default:
		s.APIJars = []string{filepath.Join(lib, "api.jar")}
		s.ToolJars = existing(filepath.Join(lib, "converter.jar"), filepath.Join(lib, "offcardverifier.jar"))
		s.ExportDir = filepath.Join(root, "api_export_files")
	}
	return s
}

// manifestVersion returns the Implementation-Version (or, failing that,
// Specification-Version) of a jar manifest.
func manifestVersion(jar string) (string, error) {
	r, err := zip.OpenReader(jar)
	if err != nil {
		return "", err
	}
	defer r.Close()

	f, err := r.Open("META-INF/MANIFEST.MF")
	if err != nil {
		return "", err
	}
	defer f.Close()

	var spec string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "Implementation-Version":
			return strings.TrimSpace(v), nil
		case "Specification-Version":
			spec = strings.TrimSpace(v)
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if spec == "" {
		return "", errors.New("manifest has no version")
	}
	return spec, nil
}

func jarHas(jar, name string) (bool, error) {
	r, err := zip.OpenReader(jar)
	if err != nil {
		return false, err
	}
	defer r.Close()
	for _, f := range r.File {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func existing(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if isFile(p) {
			out = append(out, p)
		}
	}
	return out
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
