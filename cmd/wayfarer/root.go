package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wayfarer-go/wayfarer/internal/config"
)

type rootOptions struct {
	configDir string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Automate a traveller in a location-based game",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config", ".", "directory holding "+config.FileName)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logLevel (DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newJournalCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads the config file if there is one. Defaults apply otherwise.
func loadConfig(cmd *cobra.Command, opts *rootOptions) error {
	if err := config.Load(opts.configDir); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if opts.logLevel != "" {
		viper.Set("logLevel", opts.logLevel)
	}
	return nil
}
