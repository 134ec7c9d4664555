// Package commands implements CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/restdb/internal/config"
	"github.com/satishbabariya/restdb/internal/debug"
	"github.com/satishbabariya/restdb/internal/utils/container"
	"github.com/satishbabariya/restdb/internal/version"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the restdb command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "restdb",
		Short:         "Generic REST access to relational tables",
		Long:          "restdb serves CRUD and named-query endpoints over PostgreSQL, MySQL and SQLite tables",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: .restdb.yaml in ., $HOME or ~/.config/restdb)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewInfoCommand(opts))
	rootCmd.AddCommand(NewGeneratorsCommand(opts))
	rootCmd.AddCommand(NewRoutesCommand(opts))
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// load reads the configuration and applies the logging settings.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := debug.Init(debug.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// container loads the configuration and the template generators.
func (o *rootOptions) container() (*container.Container, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.LoadTemplates(); err != nil {
		return nil, err
	}
	return c, nil
}
