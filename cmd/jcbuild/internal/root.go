package internal

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goplus/jcbuild/internal/config"
)

// Version is set via -ldflags.
var Version = "dev"

var (
	cfgFile  string
	settings = config.New()
	loaded   = &config.Settings{}
	logger   = newLogger()
)

var rootCmd = &cobra.Command{
	Use:   "jcbuild",
	Short: "jcbuild builds smart card applet packages",
	Long: `jcbuild compiles applet sources, converts them into CAP files with a card
SDK, verifies the result and names the output after the package content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(settings, cfgFile)
		if err != nil {
			return err
		}
		loaded = s
		if s.Verbose {
			logger.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is <user cache dir>/.jcbuild/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("jckit", "", "SDK used when a package names none (default $JC_HOME)")
	settings.BindPFlag(config.KeyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))
	settings.BindPFlag(config.KeyJCHome, rootCmd.PersistentFlags().Lookup("jckit"))
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "jcbuild",
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
