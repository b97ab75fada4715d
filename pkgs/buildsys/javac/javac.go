// Package javac compiles applet sources with the JDK compiler.
package javac

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/goplus/jcbuild/pkgs/buildsys"
)

// StringConstantsProcessor is the annotation processor 3.0.4+ kits need for
// string constants.
const StringConstantsProcessor = "com.oracle.javacard.stringproc.StringConstantsProcessor"

// ErrNoSources is returned when the source roots hold no file to compile.
var ErrNoSources = errors.New("no source files to compile")

// Javac runs the JDK compiler.
type Javac struct {
	bin    string
	runner buildsys.Runner
}

var _ buildsys.Compiler = (*Javac)(nil)

// Option configures Javac.
type Option func(*Javac)

// WithPath sets a custom javac executable.
func WithPath(path string) Option {
	return func(j *Javac) {
		j.bin = path
	}
}

// WithOutput sets where compiler output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(j *Javac) {
		j.runner.Stdout = stdout
		j.runner.Stderr = stderr
	}
}

// New creates a compiler using javac from $JAVA_HOME or $PATH.
func New(opts ...Option) *Javac {
	j := &Javac{bin: buildsys.Javac()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Compile compiles the selected sources into req.Dest.
func (j *Javac) Compile(ctx context.Context, req *buildsys.CompileRequest) error {
	files, err := SelectSources(req.Sources, req.Includes, req.Excludes)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(req.Dest, 0o755); err != nil {
		return fmt.Errorf("failed to create classes folder %s: %w", req.Dest, err)
	}
	return j.runner.Run(ctx, j.bin, append(Args(req), files...)...)
}

// Args returns the compiler options for req, without source files.
func Args(req *buildsys.CompileRequest) []string {
	args := []string{
		"-d", req.Dest,
		"-g",
		"-source", req.JavaVersion,
		"-target", req.JavaVersion,
		"-Xlint",
		"-Xlint:-options",
		"-Xlint:-serial",
	}
	if req.Processor != "" {
		args = append(args,
			"-processor", req.Processor,
			"-processorpath", buildsys.JoinPath(req.ProcessorPath),
			"-Xlint:all,-processing",
		)
	}
	// Only the selected files are compiled, never the sourcepath.
	args = append(args, "-sourcepath", "")
	if len(req.Classpath) > 0 {
		args = append(args, "-classpath", buildsys.JoinPath(req.Classpath))
	}
	return args
}

// SelectSources walks roots and returns the .java files matching includes
// and not matching excludes, sorted.
func SelectSources(roots, includes, excludes []string) ([]string, error) {
	inc, err := compileAll(includes)
	if err != nil {
		return nil, err
	}
	exc, err := compileAll(excludes)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".java") {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if len(inc) > 0 && !matchAny(inc, rel) {
				return nil
			}
			if matchAny(exc, rel) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list sources in %s: %w", root, err)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, strings.Join(roots, ", "))
	}
	sort.Strings(files)
	return files, nil
}

// SplitPatterns splits a comma or space separated pattern list.
func SplitPatterns(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		// "dir/" means everything below dir
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		variants := []string{p}
		// "**/X" also matches X at the root
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			variants = append(variants, rest)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			out = append(out, g)
		}
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
