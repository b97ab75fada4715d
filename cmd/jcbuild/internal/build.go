package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/build"
	"github.com/goplus/jcbuild/internal/config"
	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/buildsys/converter"
	"github.com/goplus/jcbuild/pkgs/buildsys/javac"
	"github.com/goplus/jcbuild/pkgs/buildsys/verifier"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

var (
	buildPkg       formula.Package
	buildApplets   []string
	buildJarImps   []string
	buildExpImps   []string
	buildNoVerify  bool
	buildToolTrace bool
)

// packageFlags describe a package on the command line. Setting any of them
// builds that package instead of a build file.
var packageFlags = []string{"package", "aid", "applet", "sources", "classes"}

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Build the CAP files of a build description",
	Long: `Build converts the packages listed in a build description into CAP files.

The description is a TOML file (YAML with a .yaml or .yml extension) and
defaults to ` + config.DefaultBuildFile + ` in the current directory. A single
package may instead be described with flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	flags := buildCmd.Flags()
	flags.StringVar(&buildPkg.Name, "package", "", "Package name")
	flags.StringVar(&buildPkg.AID, "aid", "", "Package AID")
	flags.StringVar(&buildPkg.Version, "version", "", "Package version (major.minor)")
	flags.StringArrayVar(&buildApplets, "applet", nil, "Applet as CLASS or CLASS=AID (repeatable)")
	flags.StringArrayVar(&buildJarImps, "import-jar", nil, "Jar with export files of an imported package (repeatable)")
	flags.StringArrayVar(&buildExpImps, "import-exps", nil, "Directory of export files of an imported package (repeatable)")
	flags.StringVar(&buildPkg.Sources, "sources", "", "Source root to compile")
	flags.StringVar(&buildPkg.Classes, "classes", "", "Compiled classes, or the compiler destination with --sources")
	flags.StringVar(&buildPkg.Includes, "includes", "", "Source patterns to compile")
	flags.StringVar(&buildPkg.Excludes, "excludes", "", "Source patterns to skip")
	flags.StringVarP(&buildPkg.Output, "output", "o", "", "CAP file name template")
	flags.StringVar(&buildPkg.Export, "export", "", "Directory receiving the export file and jar")
	flags.StringVar(&buildPkg.Jar, "jar", "", "Jar of classes and conversion output")
	flags.StringVar(&buildPkg.JCA, "jca", "", "Converter listing file")
	flags.StringVar(&buildPkg.TargetSDK, "targetsdk", "", "Target SDK version or path")
	flags.BoolVar(&buildNoVerify, "no-verify", false, "Skip off-card verification")
	flags.BoolVar(&buildPkg.Debug, "debug", false, "Generate debug information")
	flags.BoolVar(&buildPkg.Strip, "strip", false, "Remove APPLET-INF/classes from the CAP")
	flags.BoolVar(&buildPkg.Ints, "ints", false, "Enable 32-bit integer support")
	flags.BoolVar(&buildToolTrace, "tool-output", false, "Show the output of javac, converter and verifier")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	file, proj, err := loadBuild(cmd, args)
	if err != nil {
		return err
	}

	var roots []string
	if file.JCKit != "" {
		roots = append(roots, proj.Resolve(file.JCKit))
	}
	if loaded.JCHome != "" {
		abs, err := filepath.Abs(loaded.JCHome)
		if err != nil {
			return fmt.Errorf("failed to resolve jckit: %w", err)
		}
		roots = append(roots, abs)
	}

	var stdout, stderr io.Writer
	if buildToolTrace || loaded.Verbose {
		stdout, stderr = os.Stderr, os.Stderr
	}
	builder := build.New(
		build.WithLogger(logger),
		build.WithJCKit(roots...),
		build.WithTmp(loaded.Tmp),
		build.WithCompiler(javac.New(javac.WithOutput(stdout, stderr))),
		build.WithConverter(converter.New(converter.WithOutput(stdout, stderr))),
		build.WithVerifier(func(kit *sdk.SDK) buildsys.Verifier {
			return verifier.New(kit, verifier.WithOutput(stdout, stderr))
		}),
	)

	results, err := builder.BuildAll(cmd.Context(), proj, file.Packages)
	for _, res := range results {
		fmt.Fprintln(cmd.OutOrStdout(), res.CAP)
	}
	return err
}

// loadBuild returns the packages to build: the package described by flags,
// the build file named by args, or the default build file.
func loadBuild(cmd *cobra.Command, args []string) (*formula.File, *formula.Project, error) {
	fromFlags := false
	for _, name := range packageFlags {
		if cmd.Flags().Changed(name) {
			fromFlags = true
		}
	}
	if fromFlags {
		if len(args) > 0 {
			return nil, nil, fmt.Errorf("a build file and package flags can not be combined")
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		pkg, err := packageFromFlags()
		if err != nil {
			return nil, nil, err
		}
		return &formula.File{Packages: []formula.Package{pkg}}, formula.NewProject(wd), nil
	}

	path := config.DefaultBuildFile
	if len(args) > 0 {
		path = args[0]
	}
	return config.LoadBuildFile(path)
}

func packageFromFlags() (formula.Package, error) {
	pkg := buildPkg
	if buildNoVerify {
		verify := false
		pkg.Verify = &verify
	}
	for _, s := range buildApplets {
		a, err := parseApplet(s)
		if err != nil {
			return pkg, err
		}
		pkg.Applets = append(pkg.Applets, a)
	}
	for _, jar := range buildJarImps {
		pkg.Imports = append(pkg.Imports, formula.Import{Jar: jar})
	}
	for _, dir := range buildExpImps {
		pkg.Imports = append(pkg.Imports, formula.Import{Exps: dir})
	}
	return pkg, nil
}

// parseApplet parses CLASS or CLASS=AID.
func parseApplet(s string) (formula.Applet, error) {
	class, id, _ := strings.Cut(s, "=")
	class = strings.TrimSpace(class)
	if class == "" {
		return formula.Applet{}, fmt.Errorf("invalid applet %q: missing class", s)
	}
	return formula.Applet{Class: class, AID: strings.TrimSpace(id)}, nil
}
