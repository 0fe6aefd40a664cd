package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "grepowski [flags] QUESTION FILE...",
	Short: "Ask a language model one question about every fragment of your files",
	Long: `grepowski cuts each input file into fragments of numbered lines, sends the
question together with every fragment to an OpenAI-compatible chat endpoint,
and lets you review the answers in file order.

Settings come from defaults, then the YAML file named by --config or
GREPOWSKI_CONFIG, then GREPOWSKI_* environment variables, then flags.`,
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
	RunE:         runAsk,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (default $GREPOWSKI_CONFIG)")
	addSettingFlags(rootCmd.PersistentFlags())
}
