// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/CypherCore/CypherCore-sub002/internal/config"
	"github.com/CypherCore/CypherCore-sub002/internal/logging"
)

// NewRootCmd creates the charcore command tree. A nil deps uses the real
// implementations.
func NewRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "charcore",
		Short: "Character persistence core",
		Long: `charcore loads and saves characters, tracks their instance binds and
enforces instance access requirements against a character and a login
PostgreSQL database.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: XDG_CONFIG_HOME/charcore/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewCharacterCmd(deps))
	cmd.AddCommand(NewContentCmd(deps))

	return cmd
}

// loadConfig reads the configuration using the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path = ""
	}
	return config.Load(path, cmd.Flags())
}

// newLogger builds the process logger and makes it the default.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := logging.Setup("charcore", version, cfg.Log.Format, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return logger
}
