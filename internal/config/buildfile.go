package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/errs"
)

// DefaultBuildFile is the build description looked up when none is given.
const DefaultBuildFile = "jcbuild.toml"

// LoadBuildFile reads a build description. The format follows the file
// extension: .yaml and .yml are YAML, anything else TOML. Relative paths in
// the description resolve against the returned project.
func LoadBuildFile(path string) (*formula.File, *formula.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	proj := formula.NewProject(filepath.Dir(abs))
	data, err := proj.ReadFile(filepath.Base(abs))
	if err != nil {
		return nil, nil, errs.IO("read build file", abs, err)
	}
	f, err := ParseBuildFile(data, filepath.Ext(abs))
	if err != nil {
		return nil, nil, errs.Config("build file", "%s is invalid", abs).WithCause(err)
	}
	if len(f.Packages) == 0 {
		return nil, nil, errs.Helping("build file", "%s describes no package", abs)
	}
	return f, proj, nil
}

// ParseBuildFile decodes a build description in the format named by ext.
// Unknown keys are rejected.
func ParseBuildFile(data []byte, ext string) (*formula.File, error) {
	var f formula.File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	}
	return &f, nil
}
