// Package buildsys defines the external tools a CAP build drives and
// shared helpers to run them.
package buildsys

import (
	"context"

	"github.com/goplus/jcbuild/pkgs/aid"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

// Compiler turns Java sources into class files.
type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) error
}

// Converter turns class files of one package into a CAP file and,
// optionally, an export file and a listing.
type Converter interface {
	Convert(ctx context.Context, req *ConvertRequest) error
}

// Verifier checks a CAP file against the export files it references.
type Verifier interface {
	// Verify checks capPath. exportPath lists export files or directories
	// holding them, searched in order.
	Verify(ctx context.Context, capPath string, exportPath []string) error
}

// CompileRequest describes one compiler run.
type CompileRequest struct {
	// Sources are source roots.
	Sources []string
	// Includes and Excludes are glob patterns relative to a source root.
	// An empty Includes selects every .java file.
	Includes []string
	Excludes []string
	Dest     string

	Classpath   []string
	JavaVersion string

	// Processor is the annotation processor class, empty for none.
	Processor     string
	ProcessorPath []string
}

// Output kinds requested from the converter.
const (
	OutputCAP = "CAP"
	OutputEXP = "EXP"
	OutputJCA = "JCA"
)

// Applet is an applet passed to the converter.
type Applet struct {
	AID   aid.AID
	Class string
}

// ConvertRequest describes one converter run.
type ConvertRequest struct {
	Kit *sdk.SDK

	ClassDir string
	OutDir   string
	// ExportPath lists export file directories.
	ExportPath []string
	// Target, when set, selects the target API through the converter
	// instead of an export directory.
	Target sdk.Version

	PackageName    string
	PackageAID     aid.AID
	PackageVersion string
	Applets        []Applet

	Outputs []string

	Debug      bool
	NoVerify   bool
	ProxyClass bool
	Ints       bool
}
