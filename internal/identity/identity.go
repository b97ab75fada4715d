// Package identity validates a raw package description and derives the
// identifiers it leaves out: package name, package AID and applet AIDs.
package identity

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/errs"
	"github.com/goplus/jcbuild/pkgs/aid"
)

// DefaultOutput is the CAP name template used when none is given, e.g.
// SomeApplet_010203040506_9a037e30_3.0.5.cap.
const DefaultOutput = "%n_%a_%h_%j.cap"

// MaxVersionPart is the largest value of each package version component.
const MaxVersionPart = 127

var versionRE = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}$`)

// Package is a validated package description. It is produced once by
// Normalize and read-only afterwards.
type Package struct {
	Name    string
	AID     aid.AID
	Version string
	Applets []Applet
	Imports []Import

	Sources  []string
	Includes string
	Excludes string
	Classes  string

	Output string
	Export string
	Jar    string
	JCA    string

	JCKit     string
	TargetSDK string

	Verify bool
	Debug  bool
	Strip  bool
	Ints   bool
}

// Applet is an applet with a fully qualified class and its AID.
type Applet struct {
	Class string
	AID   aid.AID
}

// Import is a resolved import. Exactly one of Jar and Exps is set.
type Import struct {
	Jar  string
	Exps string
}

// ShortName returns the last component of the package name.
func (p *Package) ShortName() string {
	return lastComponent(p.Name)
}

// Dir returns the package name as a relative path ("com/example/pkg").
func (p *Package) Dir() string {
	return filepath.FromSlash(strings.ReplaceAll(p.Name, ".", "/"))
}

// IsLibrary reports whether the package has no applets.
func (p *Package) IsLibrary() bool {
	return len(p.Applets) == 0
}

// Normalize checks raw and fills in derived values. raw is not modified.
// Paths are resolved against proj. logger may be nil.
func Normalize(raw formula.Package, proj *formula.Project, logger *log.Logger) (*Package, error) {
	if logger == nil {
		logger = log.Default()
	}
	p := &Package{
		Name:      raw.Name,
		Version:   raw.Version,
		Includes:  raw.Includes,
		Excludes:  raw.Excludes,
		Classes:   proj.Resolve(raw.Classes),
		Output:    raw.Output,
		Export:    proj.Resolve(raw.Export),
		Jar:       proj.Resolve(raw.Jar),
		JCA:       proj.Resolve(raw.JCA),
		JCKit:     raw.JCKit,
		TargetSDK: raw.TargetSDK,
		Verify:    raw.VerifyEnabled(),
		Debug:     raw.Debug,
		Strip:     raw.Strip,
		Ints:      raw.Ints,
	}
	for _, s := range []string{raw.Sources, raw.Sources2} {
		if s != "" {
			p.Sources = append(p.Sources, proj.Resolve(s))
		}
	}

	if raw.AID != "" {
		id, err := aid.Parse(raw.AID)
		if err != nil {
			return nil, errs.Config("aid", "not a correct package AID").WithCause(err)
		}
		p.AID = id
	}

	if err := p.checkVersion(); err != nil {
		return nil, err
	}
	if err := p.resolveImports(raw.Imports, proj, logger); err != nil {
		return nil, err
	}
	if err := p.deriveApplets(raw.Applets, logger); err != nil {
		return nil, err
	}

	if p.AID == nil {
		return nil, errs.Helping("aid", "must specify package AID")
	}
	if p.IsLibrary() && p.Name == "" {
		return nil, errs.Helping("package", "must specify package name if no applets")
	}

	if p.Export != "" {
		p.Jar = filepath.Join(p.Export, p.ShortName()+".jar")
	}
	if p.Output == "" {
		p.Output = DefaultOutput
	}
	return p, nil
}

func (p *Package) checkVersion() error {
	if p.Version == "" {
		p.Version = "0.0"
		return nil
	}
	if !versionRE.MatchString(p.Version) {
		return errs.Helping("version", "invalid package version: %s", p.Version)
	}
	for _, part := range strings.Split(p.Version, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > MaxVersionPart {
			return errs.Helping("version", "illegal package version value: %s", p.Version)
		}
	}
	return nil
}

func (p *Package) resolveImports(raw []formula.Import, proj *formula.Project, logger *log.Logger) error {
	for i, imp := range raw {
		switch {
		case imp.Jar == "" && imp.Exps == "":
			return errs.Helping("import", "import %d has neither jar nor exps", i+1)
		case imp.Jar != "" && imp.Exps != "":
			logger.Warn("import has both jar and exps, using exps", "jar", imp.Jar, "exps", imp.Exps)
		}
		if imp.Jar != "" && !proj.IsFile(imp.Jar) {
			return errs.Config("import", "import JAR does not exist: %s", imp.Jar)
		}
		if imp.Exps != "" && !proj.IsDir(imp.Exps) {
			return errs.Config("import", "import EXP files folder does not exist: %s", imp.Exps)
		}
		p.Imports = append(p.Imports, Import{Jar: proj.Resolve(imp.Jar), Exps: proj.Resolve(imp.Exps)})
	}
	return nil
}

func (p *Package) deriveApplets(raw []formula.Applet, logger *log.Logger) error {
	for i, a := range raw {
		// 1-based, for generated AIDs
		counter := i + 1
		if a.Class == "" {
			return errs.Helping("applet", "applet class is missing")
		}

		class := a.Class
		if p.Name != "" {
			if !strings.Contains(class, ".") {
				class = p.Name + "." + class
			} else if !strings.HasPrefix(class, p.Name+".") {
				return errs.Helping("applet", "applet class %s is not in package %s", class, p.Name)
			}
		} else {
			idx := strings.LastIndex(class, ".")
			if idx < 0 {
				return errs.Helping("applet", "applet %s must be in a package", class)
			}
			p.Name = class[:idx]
			logger.Info("setting package name", "package", p.Name)
		}

		var appletAID aid.AID
		if a.AID != "" {
			id, err := aid.Parse(a.AID)
			if err != nil {
				return errs.Config("applet", "not a valid applet AID for %s", class).WithCause(err)
			}
			appletAID = id
		}

		switch {
		case p.AID != nil && appletAID != nil:
			if !aid.SameRID(p.AID, appletAID) {
				return errs.Helping("applet", "package RID does not match applet RID for %s", class)
			}
		case p.AID != nil:
			if len(p.AID) >= aid.MaxLen || counter > 0xFF {
				return errs.Helping("applet", "can not derive an AID for %s from a %d byte package AID", class, len(p.AID))
			}
			appletAID = p.AID.Append(byte(counter))
			logger.Info("generated applet AID", "aid", appletAID, "class", class)
		case appletAID != nil:
			p.AID = aid.AID(appletAID.RID())
		default:
			return errs.Helping("aid", "both package AID and applet AID are missing")
		}

		p.Applets = append(p.Applets, Applet{Class: class, AID: appletAID})
	}
	return nil
}

func lastComponent(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SimpleName returns the class name without its package.
func SimpleName(class string) string {
	return lastComponent(class)
}
