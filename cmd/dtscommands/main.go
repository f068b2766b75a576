// cmd/dtscommands/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keshon/dtscommands/internal/config"
)

const appName = "dtscommands"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "Discord command router bot",
		SilenceUsage: true,
		RunE:         runBot,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("DTS_CONFIG"), "YAML config file overriding the environment")

	rootCmd.AddCommand(runCmd, checkCmd, readmeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
