package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grepowski/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models advertised by the endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client := llm.NewClient(llm.Options{Endpoint: cfg.Endpoint, Token: cfg.Token})
		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("list models from %s: %w", llm.ModelsURL(cfg.Endpoint), err)
		}
		if len(models) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tOWNED BY")
		for _, m := range models {
			fmt.Fprintf(w, "%s\t%s\n", m.ID, m.OwnedBy)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
