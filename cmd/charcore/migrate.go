// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/CypherCore/CypherCore-sub002/internal/config"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// NewMigrateCmd creates the migrate command and its subcommands.
func NewMigrateCmd(deps *Deps) *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply, roll back or inspect the embedded schema migrations of the
character and login databases. Without a subcommand all pending migrations
are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return forEachScope(cmd, deps, scopeName, func(scope store.Scope, m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Printf("%s: up to date\n", scope)
				return nil
			})
		},
	}
	cmd.PersistentFlags().StringVar(&scopeName, "scope", "all", "database to migrate: character, login or all")

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back one migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return forEachScope(cmd, deps, scopeName, func(scope store.Scope, m Migrator) error {
				if err := m.Steps(-1); err != nil {
					return err
				}
				cmd.Printf("%s: rolled back one migration\n", scope)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return forEachScope(cmd, deps, scopeName, func(scope store.Scope, m Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				cmd.Printf("%s: version %d", scope, version)
				if dirty {
					cmd.Print(" (dirty)")
				}
				cmd.Printf(", %d pending\n", len(pending))
				for _, v := range pending {
					name, err := store.MigrationName(scope, v)
					if err != nil {
						return err
					}
					cmd.Printf("  %s\n", name)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Wrap(err)
			}
			if scopeName == "all" {
				return oops.Code("SCOPE_REQUIRED").Errorf("force needs --scope character or --scope login")
			}
			return forEachScope(cmd, deps, scopeName, func(scope store.Scope, m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("%s: forced to version %d\n", scope, version)
				return nil
			})
		},
	})

	return cmd
}

func parseScopes(name string) ([]store.Scope, error) {
	switch name {
	case "all":
		return []store.Scope{store.ScopeCharacter, store.ScopeLogin}, nil
	case "character":
		return []store.Scope{store.ScopeCharacter}, nil
	case "login":
		return []store.Scope{store.ScopeLogin}, nil
	}
	return nil, oops.Code("SCOPE_INVALID").With("scope", name).Errorf("unknown scope %q", name)
}

func scopeURL(cfg *config.Config, scope store.Scope) string {
	if scope == store.ScopeLogin {
		return cfg.Database.LoginURL
	}
	return cfg.Database.CharacterURL
}

// forEachScope opens a migrator for every selected scope in turn and runs
// fn on it.
func forEachScope(cmd *cobra.Command, deps *Deps, name string, fn func(store.Scope, Migrator) error) error {
	scopes, err := parseScopes(name)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	for _, scope := range scopes {
		url := scopeURL(cfg, scope)
		if url == "" {
			return oops.Code("CONFIG_INVALID").With("scope", scope.String()).Errorf("no database URL for %s", scope)
		}
		m, err := deps.NewMigrator(scope, url)
		if err != nil {
			return err
		}
		err = fn(scope, m)
		if closeErr := m.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return oops.With("scope", scope.String()).Wrap(err)
		}
	}
	return nil
}
