package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/jcbuild/pkgs/aid"
)

var aidCmd = &cobra.Command{
	Use:   "aid <aid>...",
	Short: "Normalize AIDs",
	Long: `Aid parses AIDs written in any accepted form ("0102030405",
"01:02:03:04:05", "0x01 0x02 0x03 0x04 0x05") and prints the hex form, the
RID and the converter notation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAID,
}

func init() {
	rootCmd.AddCommand(aidCmd)
}

func runAID(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		id, err := aid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid AID %q: %w", arg, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join([]string{
			id.String(),
			aid.EncodeHex(id.RID()),
			id.ConverterString(),
		}, " "))
	}
	return nil
}
