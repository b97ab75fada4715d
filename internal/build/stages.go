package build

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/env"
	"github.com/goplus/jcbuild/internal/errs"
	"github.com/goplus/jcbuild/internal/identity"
	"github.com/goplus/jcbuild/internal/naming"
	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/buildsys/converter"
	"github.com/goplus/jcbuild/pkgs/buildsys/javac"
	"github.com/goplus/jcbuild/pkgs/buildsys/verifier"
	"github.com/goplus/jcbuild/pkgs/capfile"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

// run is the state of one Build call.
type run struct {
	b     *Builder
	proj  *formula.Project
	log   *log.Logger
	temps *tempSet

	kit    *sdk.SDK
	target *sdk.SDK
	pkg    *identity.Package

	classes string
	out     converter.Outputs
	outDir  string
	// exps are the export directories of the imports.
	exps []string
}

// -----------------------------------------------------------------------------

func (r *run) validate(raw formula.Package) error {
	kit, err := r.findKit(raw.JCKit)
	if err != nil {
		return err
	}
	requested := raw.TargetSDK
	if _, ok := sdk.ParseVersion(requested); !ok {
		requested = r.proj.Resolve(requested)
	}
	kit, target, err := sdk.Resolve(kit, requested, r.b.kits.get)
	if err != nil {
		return err
	}
	r.kit, r.target = kit, target
	r.log.Info("using SDK", "version", kit.Version, "root", kit.Root)
	if target != kit {
		r.log.Info("targeting SDK", "version", target.Version, "root", target.Root)
	}

	if raw.Sources == "" && raw.Classes == "" && r.proj.IsDir(DefaultSources) {
		raw.Sources = DefaultSources
	}
	if raw.Sources == "" && raw.Classes == "" {
		return errs.Helping("sources", "must specify sources or classes")
	}

	pkg, err := identity.Normalize(raw, r.proj, r.log)
	if err != nil {
		return err
	}
	r.pkg = pkg
	r.log = r.log.With("package", pkg.Name)
	if pkg.IsLibrary() {
		r.log.Info("building library", "aid", pkg.AID)
	} else {
		r.log.Info("building CAP", "applets", len(pkg.Applets), "aid", pkg.AID)
		for _, a := range pkg.Applets {
			r.log.Info("applet", "class", a.Class, "aid", a.AID)
		}
	}
	return nil
}

// findKit detects the SDK named by the package, else the first configured
// root, else $JC_HOME.
func (r *run) findKit(pkgKit string) (*sdk.SDK, error) {
	candidates := append([]string{pkgKit}, r.b.jckits...)
	candidates = append(candidates, env.JCHome())
	for _, root := range candidates {
		if root == "" {
			continue
		}
		kit, err := r.b.kits.get(r.proj.Resolve(root))
		if err != nil {
			return nil, errs.Helping("jckit", "no usable SDK referenced").WithCause(err)
		}
		return kit, nil
	}
	return nil, errs.Helping("jckit", "no usable SDK referenced")
}

// -----------------------------------------------------------------------------

func (r *run) compile(ctx context.Context) error {
	pkg := r.pkg
	dest := pkg.Classes
	if dest == "" {
		dir, err := r.temps.dir("classes")
		if err != nil {
			return err
		}
		dest = dir
	}
	r.classes = dest

	req := &buildsys.CompileRequest{
		Sources:     pkg.Sources,
		Includes:    javac.SplitPatterns(pkg.Includes),
		Excludes:    javac.SplitPatterns(pkg.Excludes),
		Dest:        dest,
		Classpath:   slices.Clone(r.target.APIJars),
		JavaVersion: sdk.JavaVersion(r.kit.Version),
	}
	for _, imp := range pkg.Imports {
		if imp.Jar != "" {
			req.Classpath = append(req.Classpath, imp.Jar)
		}
	}
	if r.kit.Version.IsOneOf(sdk.V304, sdk.V305, sdk.V310) {
		req.Processor = javac.StringConstantsProcessor
		req.ProcessorPath = r.kit.CompilerJars
	}

	r.log.Info("compiling", "stage", "compile", "sources", strings.Join(pkg.Sources, ", "), "dest", dest)
	return errs.Tool("compile", r.b.compiler.Compile(ctx, req))
}

// -----------------------------------------------------------------------------

func (r *run) convert(ctx context.Context) error {
	pkg := r.pkg
	if r.classes == "" {
		r.classes = pkg.Classes
	}
	outDir, err := r.temps.dir("applet")
	if err != nil {
		return err
	}
	r.outDir = outDir
	r.out = converter.OutputsOf(outDir, pkg.Name)

	if err := r.collectImports(); err != nil {
		return err
	}

	req := &buildsys.ConvertRequest{
		Kit:            r.kit,
		ClassDir:       r.classes,
		OutDir:         outDir,
		PackageName:    pkg.Name,
		PackageAID:     pkg.AID,
		PackageVersion: pkg.Version,
		Outputs:        []string{buildsys.OutputCAP},
		Debug:          pkg.Debug,
		NoVerify:       !pkg.Verify,
		ProxyClass:     r.kit.Version.IsV3(),
		Ints:           pkg.Ints,
	}
	if sdk.UsesTargetFlag(r.kit, r.target) {
		req.Target = r.target.Version
	} else {
		req.ExportPath = append(req.ExportPath, r.target.ExportDir)
	}
	req.ExportPath = append(req.ExportPath, r.exps...)

	if pkg.Export != "" || (len(pkg.Applets) > 1 && pkg.Verify) {
		req.Outputs = append(req.Outputs, buildsys.OutputEXP)
	}
	if pkg.JCA != "" {
		req.Outputs = append(req.Outputs, buildsys.OutputJCA)
	}
	for _, a := range pkg.Applets {
		req.Applets = append(req.Applets, buildsys.Applet{AID: a.AID, Class: a.Class})
	}

	r.log.Info("converting", "stage", "convert", "outputs", strings.Join(req.Outputs, " "))
	if err := r.b.converter.Convert(ctx, req); err != nil {
		return errs.Tool("convert", err)
	}
	if _, err := os.Stat(r.out.CAP); err != nil {
		return errs.Artifact(r.out.CAP, "can not find CAP in %s", r.out.Dir)
	}
	return nil
}

// collectImports lists the export directories of the imports. Export files
// of jar imports are extracted to temporary directories first.
func (r *run) collectImports() error {
	for _, imp := range r.pkg.Imports {
		dir := imp.Exps
		if dir == "" {
			tmp, err := r.temps.dir("imports")
			if err != nil {
				return err
			}
			if _, err := verifier.ExtractExps(imp.Jar, tmp); err != nil {
				return errs.IO("extract export files from", imp.Jar, err)
			}
			dir = tmp
		}
		if !slices.Contains(r.exps, dir) {
			r.exps = append(r.exps, dir)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (r *run) verify(ctx context.Context) error {
	exportDir, err := sdk.ExportDir(r.kit, r.target)
	if err != nil {
		return err
	}
	path := slices.Clone(r.exps)
	path = append(path, r.out.EXP, exportDir)

	r.log.Info("verifying", "stage", "verify", "cap", r.out.CAP)
	if err := r.b.newVerifier(r.kit).Verify(ctx, r.out.CAP, path); err != nil {
		return errs.Tool("verify", err)
	}
	r.log.Info("verification passed")
	return nil
}

// -----------------------------------------------------------------------------

func (r *run) collect() (*Result, error) {
	pkg := r.pkg
	f, err := capfile.Open(r.out.CAP)
	if err != nil {
		return nil, errs.Artifact(r.out.CAP, "can not read CAP: %v", err)
	}

	var appletClass string
	if len(pkg.Applets) > 0 {
		appletClass = pkg.Applets[0].Class
	}
	meta := naming.FromCAP(f, appletClass)
	name := naming.Render(pkg.Output, meta)
	res := &Result{
		Package: pkg,
		Kit:     r.kit,
		Target:  r.target,
		Name:    name,
		Meta:    meta,
		CAP:     r.proj.Resolve(name),
	}

	if pkg.Strip {
		if err := stripClasses(r.out.CAP); err != nil {
			return nil, errs.IO("strip", r.out.CAP, err)
		}
	}
	if err := copyFile(r.out.CAP, res.CAP); err != nil {
		return nil, errs.IO("copy CAP to", res.CAP, err)
	}
	r.log.Info("CAP saved", "stage", "collect", "path", res.CAP, "hash", meta.Hash[:8])

	if pkg.Export != "" {
		if _, err := os.Stat(r.out.EXP); err != nil {
			return nil, errs.Artifact(r.out.EXP, "can not find EXP in %s", r.out.Dir)
		}
		res.EXP = filepath.Join(pkg.Export, pkg.Dir(), "javacard", pkg.ShortName()+".exp")
		if err := copyFile(r.out.EXP, res.EXP); err != nil {
			return nil, errs.IO("copy EXP to", res.EXP, err)
		}
		r.log.Info("EXP saved", "path", res.EXP)
	}

	if pkg.JCA != "" {
		if _, err := os.Stat(r.out.JCA); err != nil {
			return nil, errs.Artifact(r.out.JCA, "can not find JCA in %s", r.out.Dir)
		}
		res.JCA = pkg.JCA
		if err := copyFile(r.out.JCA, res.JCA); err != nil {
			return nil, errs.IO("copy JCA to", res.JCA, err)
		}
		r.log.Info("JCA saved", "path", res.JCA)
	}

	if pkg.Jar != "" {
		res.Jar = pkg.Jar
		if err := writeJar(res.Jar, r.classes, r.outDir); err != nil {
			return nil, errs.IO("write jar", res.Jar, err)
		}
		r.log.Info("JAR saved", "path", res.Jar)
	}
	return res, nil
}
