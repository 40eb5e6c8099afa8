package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agentlink",
	Short: "Top real estate agent reports for a suburb",
	Long:  "Aggregates recent sales from the Domain listings API, reconciles them with featured agents and commission sheets, and ranks the top agents and rental agencies for a suburb.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
