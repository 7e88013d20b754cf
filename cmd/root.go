package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "placetag",
	Short: "Resolve GPS positions to protected-area places and territories",
	Long:  "Finds the conservation land, protected area or hand-drawn region containing a GPS point across an ordered list of shapefile datasets, plus the indigenous territories it lies in, and records them as machine tags.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
