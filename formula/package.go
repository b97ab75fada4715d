package formula

// -----------------------------------------------------------------------------

// Package is the raw description of one CAP file to build, as written by the
// user. Fields may be empty; the build normalizes and validates them once
// before any tool runs.
type Package struct {
	// Name is the dotted package name. It may be inferred from the first
	// applet class.
	Name string `toml:"package,omitempty" yaml:"package,omitempty"`
	// AID is the package AID in free-form hex.
	AID string `toml:"aid,omitempty" yaml:"aid,omitempty"`
	// Version is "major.minor", each in [0,127]. Defaults to "0.0".
	Version string `toml:"version,omitempty" yaml:"version,omitempty"`

	Applets []Applet `toml:"applet,omitempty" yaml:"applets,omitempty"`
	Imports []Import `toml:"import,omitempty" yaml:"imports,omitempty"`

	// Sources and Sources2 are source roots to compile. Includes and
	// Excludes are comma or space separated glob patterns on paths relative
	// to a source root.
	Sources  string `toml:"sources,omitempty" yaml:"sources,omitempty"`
	Sources2 string `toml:"sources2,omitempty" yaml:"sources2,omitempty"`
	Includes string `toml:"includes,omitempty" yaml:"includes,omitempty"`
	Excludes string `toml:"excludes,omitempty" yaml:"excludes,omitempty"`
	// Classes is a directory of compiled classes. With Sources it is the
	// compiler destination.
	Classes string `toml:"classes,omitempty" yaml:"classes,omitempty"`

	// Output is the CAP file name, possibly a template (see naming).
	Output string `toml:"output,omitempty" yaml:"output,omitempty"`
	// Export is the directory receiving the export file tree.
	Export string `toml:"export,omitempty" yaml:"export,omitempty"`
	// Jar is the path of the packaged classes and conversion output.
	Jar string `toml:"jar,omitempty" yaml:"jar,omitempty"`
	// JCA is the path of the converter listing.
	JCA string `toml:"jca,omitempty" yaml:"jca,omitempty"`

	// JCKit overrides the SDK used to build this package.
	JCKit string `toml:"jckit,omitempty" yaml:"jckit,omitempty"`
	// TargetSDK is a version tag or SDK path to build for.
	TargetSDK string `toml:"targetsdk,omitempty" yaml:"targetsdk,omitempty"`

	// Verify runs the off-card verifier. Defaults to true.
	Verify *bool `toml:"verify,omitempty" yaml:"verify,omitempty"`
	Debug  bool  `toml:"debug,omitempty" yaml:"debug,omitempty"`
	Strip  bool  `toml:"strip,omitempty" yaml:"strip,omitempty"`
	Ints   bool  `toml:"ints,omitempty" yaml:"ints,omitempty"`
}

// VerifyEnabled reports whether verification is requested.
func (p *Package) VerifyEnabled() bool {
	return p.Verify == nil || *p.Verify
}

// Applet is an applet inside a package.
type Applet struct {
	// Class is the applet class, dotted or relative to the package.
	Class string `toml:"class" yaml:"class"`
	// AID is optional; it is derived from the package AID when empty.
	AID string `toml:"aid,omitempty" yaml:"aid,omitempty"`
}

// Import references the export files of another package, either inside a
// jar or as a directory.
type Import struct {
	Jar  string `toml:"jar,omitempty" yaml:"jar,omitempty"`
	Exps string `toml:"exps,omitempty" yaml:"exps,omitempty"`
}

// -----------------------------------------------------------------------------

// File is a build description file: a default SDK and the packages to build
// in order.
type File struct {
	JCKit    string    `toml:"jckit,omitempty" yaml:"jckit,omitempty"`
	Packages []Package `toml:"cap" yaml:"caps"`
}

// -----------------------------------------------------------------------------
