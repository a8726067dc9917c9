// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewContentCmd creates the content command group.
func NewContentCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Work with the game-content file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [PATH]",
		Short: "Check a content file against its schema, version and references",
		Long: `Validate the content file at PATH, or the configured content.path when no
PATH is given. Access requirement conditions are compiled as part of the check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Content.Path
			}

			c, err := deps.LoadContent(path)
			if err != nil {
				return err
			}
			sum := c.Summary()
			cmd.Printf("%s: ok\n", path)
			cmd.Printf("  max level %d\n", c.MaxLevel())
			cmd.Printf("  %d maps, %d difficulties, %d map difficulties, %d access rules\n",
				sum.Maps, sum.Difficulties, sum.MapDifficulties, sum.AccessRules)
			cmd.Printf("  %d items, %d quests, %d spells, %d skills, %d currencies, %d talents\n",
				sum.Items, sum.Quests, sum.Spells, sum.Skills, sum.Currencies, sum.Talents)
			cmd.Printf("  %d races, %d classes\n", sum.Races, sum.Classes)
			return nil
		},
	})
	return cmd
}
