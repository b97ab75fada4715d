// Package converter drives the SDK converter that turns class files into
// CAP, export and listing files.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

const (
	mainV3     = "com.sun.javacard.converter.Main"
	mainLegacy = "com.sun.javacard.converter.Converter"
)

// Converter runs the converter of the kit named in each request.
type Converter struct {
	java   string
	runner buildsys.Runner
}

var _ buildsys.Converter = (*Converter)(nil)

// Option configures Converter.
type Option func(*Converter)

// WithJava sets a custom java launcher.
func WithJava(path string) Option {
	return func(c *Converter) {
		c.java = path
	}
}

// WithOutput sets where converter output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Converter) {
		c.runner.Stdout = stdout
		c.runner.Stderr = stderr
	}
}

// New creates a converter using java from $JAVA_HOME or $PATH.
func New(opts ...Option) *Converter {
	c := &Converter{java: buildsys.Java()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs the converter for req.
func (c *Converter) Convert(ctx context.Context, req *buildsys.ConvertRequest) error {
	args, err := JavaArgs(req)
	if err != nil {
		return err
	}
	r := c.runner
	r.Env = buildsys.KitEnv(req.Kit)
	return r.Run(ctx, c.java, args...)
}

// JavaArgs returns the java launcher arguments that run the converter of
// req.Kit with the options of req.
func JavaArgs(req *buildsys.ConvertRequest) ([]string, error) {
	if req.Kit == nil {
		return nil, errors.New("converter: no SDK")
	}
	if len(req.Kit.ToolJars) == 0 {
		return nil, fmt.Errorf("converter: %s has no tool jars", req.Kit)
	}
	var args []string
	main := mainLegacy
	if req.Kit.Version.IsV3() {
		main = mainV3
		args = append(args, "-Djc.home="+req.Kit.Root)
	}
	args = append(args, "-cp", buildsys.JoinPath(req.Kit.ToolJars), main)
	return append(args, Args(req)...), nil
}

// Args returns the converter options for req, in the order the converter
// documents them.
func Args(req *buildsys.ConvertRequest) []string {
	args := []string{
		"-d", req.OutDir,
		"-classdir", req.ClassDir,
	}
	if req.Target != 0 {
		args = append(args, "-target", req.Target.String())
	}
	args = append(args, "-exportpath", buildsys.JoinPath(req.ExportPath))
	args = append(args, "-verbose", "-nobanner")

	if req.Debug {
		args = append(args, "-debug")
	}
	// 2.1.x converters do not know -noverify.
	if req.NoVerify && !req.Kit.Version.IsOneOf(sdk.V211, sdk.V212) {
		args = append(args, "-noverify")
	}
	if req.ProxyClass {
		args = append(args, "-useproxyclass")
	}
	if req.Ints {
		args = append(args, "-i")
	}

	outputs := req.Outputs
	if len(outputs) == 0 {
		outputs = []string{buildsys.OutputCAP}
	}
	args = append(args, "-out")
	args = append(args, outputs...)

	for _, a := range req.Applets {
		args = append(args, "-applet", a.AID.ConverterString(), a.Class)
	}
	return append(args, req.PackageName, req.PackageAID.ConverterString(), req.PackageVersion)
}

// Outputs lists where the converter writes the files of a package.
type Outputs struct {
	Dir string
	CAP string
	EXP string
	JCA string
}

// OutputsOf returns the output locations of pkg under outDir:
// <outDir>/<pkg/path>/javacard/<last>.{cap,exp,jca}.
func OutputsOf(outDir, pkg string) Outputs {
	last := pkg
	if i := strings.LastIndexByte(pkg, '.'); i >= 0 {
		last = pkg[i+1:]
	}
	dir := filepath.Join(outDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")), "javacard")
	return Outputs{
		Dir: dir,
		CAP: filepath.Join(dir, last+".cap"),
		EXP: filepath.Join(dir, last+".exp"),
		JCA: filepath.Join(dir, last+".jca"),
	}
}
