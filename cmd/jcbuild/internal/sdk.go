package internal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/jcbuild/pkgs/sdk"
)

var sdkTarget string

var sdkCmd = &cobra.Command{
	Use:   "sdk [path]",
	Short: "Show the card SDK installed in a directory",
	Long: `Sdk detects the card SDK installed at path, or at the configured jckit, and
prints its version and files. With --target it also checks whether the SDK can
build for another SDK version or installation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSDK,
}

func init() {
	sdkCmd.Flags().StringVar(&sdkTarget, "target", "", "Target SDK version or path to check")
	rootCmd.AddCommand(sdkCmd)
}

func runSDK(cmd *cobra.Command, args []string) error {
	root := loaded.JCHome
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		return errors.New("no SDK path given and no jckit configured")
	}
	kit, err := sdk.Detect(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printSDK(out, kit)

	if sdkTarget == "" {
		return nil
	}
	_, target, err := sdk.Resolve(kit, sdkTarget, sdk.Detect)
	if err != nil {
		return err
	}
	exportDir, err := sdk.ExportDir(kit, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "target:   %s\n", target.Version)
	if sdk.UsesTargetFlag(kit, target) {
		fmt.Fprintf(out, "selected: -target %s\n", target.Version)
	}
	fmt.Fprintf(out, "exports:  %s\n", exportDir)
	return nil
}

func printSDK(w io.Writer, kit *sdk.SDK) {
	fmt.Fprintf(w, "version:  %s\n", kit.Version)
	fmt.Fprintf(w, "root:     %s\n", kit.Root)
	fmt.Fprintf(w, "java:     %s\n", sdk.JavaVersion(kit.Version))
	fmt.Fprintf(w, "api:      %s\n", strings.Join(kit.APIJars, " "))
	fmt.Fprintf(w, "tools:    %s\n", strings.Join(kit.ToolJars, " "))
	if len(kit.CompilerJars) > 0 {
		fmt.Fprintf(w, "compiler: %s\n", strings.Join(kit.CompilerJars, " "))
	}
	fmt.Fprintf(w, "exports:  %s\n", kit.ExportDir)
}
