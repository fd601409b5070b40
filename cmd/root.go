package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geofuzz/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geofuzz",
	Short: "Fuzz latitude/longitude coordinates in delimited files",
	Long:  "Adds bounded uniform random noise to the coordinate columns of a delimited text file, keeping locations approximately correct while obscuring exact positions for privacy-preserving data sharing.",
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
