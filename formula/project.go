package formula

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// -----------------------------------------------------------------------------

// Project is the directory a build description belongs to. Relative paths in
// a Package resolve against it.
type Project struct {
	Dir   string
	DirFS fs.FS
}

// NewProject returns the project rooted at dir.
func NewProject(dir string) *Project {
	return &Project{Dir: dir, DirFS: os.DirFS(dir)}
}

// Resolve returns path made absolute against the project directory. Empty
// paths stay empty.
func (p *Project) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// IsDir reports whether path, resolved against the project, is a directory.
func (p *Project) IsDir(path string) bool {
	fi, err := os.Stat(p.Resolve(path))
	return err == nil && fi.IsDir()
}

// IsFile reports whether path, resolved against the project, is a regular
// file.
func (p *Project) IsFile(path string) bool {
	fi, err := os.Stat(p.Resolve(path))
	return err == nil && fi.Mode().IsRegular()
}

// ReadFile reads the content of a file in the project.
func (p *Project) ReadFile(path string) ([]byte, error) {
	file, err := p.DirFS.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// -----------------------------------------------------------------------------
