package build

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// classesDir holds the class files 3.x converters add to debug CAPs.
const classesDir = "APPLET-INF/classes/"

// stripClasses rewrites the CAP at path without the entries under
// APPLET-INF/classes. Other entries are copied unchanged.
func stripClasses(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	return writeAtomic(path, func(out io.Writer) error {
		w := zip.NewWriter(out)
		for _, f := range r.File {
			if f.Name == strings.TrimSuffix(classesDir, "/") || strings.HasPrefix(f.Name, classesDir) {
				continue
			}
			if err := w.Copy(f); err != nil {
				return err
			}
		}
		return w.Close()
	})
}

// copyFile copies src to dst, creating the parent of dst. dst is replaced
// only once the copy is complete.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeAtomic(dst, func(out io.Writer) error {
		_, err := io.Copy(out, in)
		return err
	})
}

// writeJar zips the files below dirs into dest. Entry names are relative to
// the directory holding the file; when several dirs hold the same name the
// first one wins. Empty dirs are skipped.
func writeJar(dest string, dirs ...string) error {
	return writeAtomic(dest, func(out io.Writer) error {
		w := zip.NewWriter(out)
		seen := make(map[string]bool)
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if err := zipDir(w, dir, seen); err != nil {
				return err
			}
		}
		return w.Close()
	})
}

func zipDir(w *zip.Writer, srcDir string, seen map[string]bool) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if seen[name] {
			return nil
		}
		seen[name] = true

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}

// writeAtomic writes dest through a temporary file in the same directory
// and renames it into place. On failure dest is left untouched.
func writeAtomic(dest string, write func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".jcbuild-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
