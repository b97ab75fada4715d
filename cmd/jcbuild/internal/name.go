package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/jcbuild/internal/identity"
	"github.com/goplus/jcbuild/internal/naming"
	"github.com/goplus/jcbuild/pkgs/capfile"
)

var nameApplet string

var nameCmd = &cobra.Command{
	Use:   "name <cap> [template]",
	Short: "Print the output name of an existing CAP file",
	Long: `Name reads a CAP file and expands a name template with its content.

Placeholders: %n common name, %p package name, %a package AID, %H load file
hash, %h first 8 characters of the hash, %j card platform version,
%g GlobalPlatform version. The template defaults to ` + identity.DefaultOutput + `.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runName,
}

func init() {
	nameCmd.Flags().StringVar(&nameApplet, "applet", "", "Applet class naming a single-applet CAP")
	rootCmd.AddCommand(nameCmd)
}

func runName(cmd *cobra.Command, args []string) error {
	f, err := capfile.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	tmpl := identity.DefaultOutput
	if len(args) > 1 {
		tmpl = args[1]
	}
	fmt.Fprintln(cmd.OutOrStdout(), naming.Render(tmpl, naming.FromCAP(f, nameApplet)))
	return nil
}
