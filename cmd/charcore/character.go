// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/collection"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/group"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// NewCharacterCmd creates the character command group.
func NewCharacterCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Inspect stored characters",
	}
	cmd.AddCommand(newInspectCmd(deps))
	return cmd
}

func newInspectCmd(deps *Deps) *cobra.Command {
	var (
		account int64
		repair  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect GUID",
		Short: "Load a character and print what the load pipeline made of it",
		Long: `Load a character exactly as a login would and print a summary, including
the rows the load would repair. With --repair the repairs are committed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return oops.Code("INVALID_GUID").With("guid", args[0]).Wrap(err)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			c, err := deps.LoadContent(cfg.Content.Path)
			if err != nil {
				return err
			}
			chars, err := deps.OpenPool(cmd.Context(), cfg.Database.CharacterURL)
			if err != nil {
				return err
			}
			defer chars.Close()
			login, err := deps.OpenPool(cmd.Context(), cfg.Database.LoginURL)
			if err != nil {
				return err
			}
			defer login.Close()

			var committer store.Committer
			if repair {
				committer = store.NewExecutor(chars, store.ScopeCharacter,
					store.WithRetry(cfg.Database.MaxRetries, cfg.Database.RetryBase), store.WithLogger(logger))
			}
			in := inspection{
				source:    deps.NewSource(chars, login),
				content:   c,
				gate:      cfg.Gate(),
				names:     cfg.Names.Reserved,
				committer: committer,
				logger:    logger,
				deps:      deps,
			}
			report, err := in.run(cmd.Context(), guid, account)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().Int64Var(&account, "account", 0, "owning account id (required)")
	cmd.Flags().BoolVar(&repair, "repair", false, "commit the load repairs")
	_ = cmd.MarkFlagRequired("account") //nolint:errcheck // flag is defined above
	return cmd
}

// InspectReport is the printed summary of one character.
type InspectReport struct {
	GUID       int64            `json:"guid"`
	Loaded     bool             `json:"loaded"`
	Refused    string           `json:"refused,omitempty"`
	Name       string           `json:"name,omitempty"`
	Level      uint8            `json:"level,omitempty"`
	Race       uint8            `json:"race,omitempty"`
	Class      uint8            `json:"class,omitempty"`
	Position   content.Location `json:"position"`
	Money      uint64           `json:"money"`
	MaxHealth  uint32           `json:"max_health"`
	Items      int              `json:"items"`
	Spells     int              `json:"spells"`
	Binds      []InspectBind    `json:"binds"`
	Repairs    int              `json:"repairs"`
	Repaired   bool             `json:"repaired"`
	Collection CollectionCounts `json:"collection"`
}

// InspectBind is one instance bind in the report.
type InspectBind struct {
	Map        uint32             `json:"map"`
	Difficulty content.Difficulty `json:"difficulty"`
	Instance   uint32             `json:"instance"`
	Permanent  bool               `json:"permanent"`
	Extend     string             `json:"extend"`
}

// CollectionCounts summarizes the account collections.
type CollectionCounts struct {
	Toys      int `json:"toys"`
	Heirlooms int `json:"heirlooms"`
	Mounts    int `json:"mounts"`
}

type inspection struct {
	source    CharacterSource
	content   *content.Store
	gate      instance.GateConfig
	names     []string
	committer store.Committer
	logger    *slog.Logger
	deps      *Deps
}

func (in inspection) run(ctx context.Context, guid, account int64) (*InspectReport, error) {
	now := in.deps.Now()
	batch, err := in.source.LoadCharacter(ctx, guid, account, now)
	if err != nil {
		return nil, err
	}
	accountBatch, err := in.source.LoadAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	names, err := character.NewNameFilter(in.names)
	if err != nil {
		return nil, err
	}
	reg := instance.NewRegistry(in.content, instance.WithRegistryLogger(in.logger))
	cfg := character.Config{
		Content:  in.content,
		Registry: reg,
		Gate:     instance.NewGate(in.content, nil, in.gate),
		Groups:   group.NewDirectory(reg),
		Names:    names,
		Logger:   in.logger,
		Clock:    in.deps.Now,
	}
	coll := collection.NewManager(account, in.content, collection.WithLogger(in.logger))
	coll.Load(accountBatch)
	p := character.NewPlayer(cfg, guid, account, coll)

	repair := store.NewTransaction(store.ScopeCharacter)
	report := &InspectReport{GUID: guid, Binds: []InspectBind{}}
	if err := p.LoadFromDB(ctx, character.LoadIdentity{GUID: guid, Account: account}, batch, repair); err != nil {
		var le *character.LoadError
		if errors.As(err, &le) {
			report.Refused = le.Reason.String()
			return report, nil
		}
		return nil, err
	}

	base := p.Base()
	report.Loaded = true
	report.Name, report.Level, report.Race, report.Class = base.Name, base.Level, base.Race, base.Class
	report.Position = base.Position
	report.Money = base.Money
	report.MaxHealth = p.Stats().MaxHealth
	report.Items = p.Inventory().Len()
	report.Spells = p.Spells().Len()
	report.Repairs = repair.Len()
	report.Collection = CollectionCounts{
		Toys:      coll.ToyCount(),
		Heirlooms: coll.HeirloomCount(),
		Mounts:    coll.MountCount(),
	}
	p.Binds().Each(func(mapID uint32, d content.Difficulty, b *instance.Bind) bool {
		report.Binds = append(report.Binds, InspectBind{
			Map:        mapID,
			Difficulty: d,
			Instance:   b.Save().ID(),
			Permanent:  b.Permanent(),
			Extend:     b.Extend().String(),
		})
		return true
	})

	if in.committer != nil && !repair.Empty() {
		if err := in.committer.Commit(ctx, repair); err != nil {
			return nil, oops.Code("REPAIR_COMMIT_FAILED").With("guid", guid).Wrap(err)
		}
		report.Repaired = true
	}
	p.LogOut()
	return report, nil
}
