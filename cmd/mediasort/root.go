package main

import (
	"fmt"

	"github.com/On-Jun9/MediaSort/internal/config"
	"github.com/spf13/cobra"
)

// commandContext carries the persistent flags shared by every subcommand.
type commandContext struct {
	configFile string
	logFile    string
	logJSON    bool
}

// loadConfig reads --config when given and applies the shared overrides.
func (c *commandContext) loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if c.configFile != "" {
		loaded, err := config.LoadFromFile(c.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if c.logFile != "" {
		cfg.LogFile = c.logFile
	}
	if c.logJSON {
		cfg.LogJSON = true
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "mediasort",
		Short: "Organize photos/videos by date and review duplicates",
		Long: `MediaSort copies a source tree into a destination organized by capture
date (EXIF) or modification time, and finds same-name same-size duplicates
in a folder so they can be deleted or moved after review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFile, "config", "c", "", "config file path (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&ctx.logFile, "log-file", "", "log file path")
	rootCmd.PersistentFlags().BoolVar(&ctx.logJSON, "log-json", false, "write JSON log lines")

	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newDupesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appVersion)
		},
	}
}
