// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

const (
	charGUID int64 = 100
	account  int64 = 7

	mapEasternKingdoms uint32 = 0
	mapKalimdor        uint32 = 1
	mapShadowfang      uint32 = 33
	mapOnyxia          uint32 = 249
	mapWarsong         uint32 = 489
	mapRemoved         uint32 = 9999

	itemSword     uint32 = 25
	itemBread     uint32 = 4540
	itemStone     uint32 = 5512
	itemPouch     uint32 = 4496
	itemTunic     uint32 = 2041
	itemMissing   uint32 = 77777
	questHogger   uint32 = 176
	questKey      uint32 = 1234
	spellFire     uint32 = 133
	spellGhost    uint32 = 8326
	spellFort     uint32 = 1243
	skillSmith    uint32 = 164
	currencyHonor uint32 = 1
)

var (
	epoch = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	// Northshire, the human warrior start location.
	northshire = content.Location{Map: mapEasternKingdoms, X: -8949.95, Y: -132.493, Z: 83.5312}

	fixtureOnce    sync.Once
	fixtureContent *content.Store
	fixtureErr     error
)

func loadContent() (*content.Store, error) {
	fixtureOnce.Do(func() {
		fixtureContent, fixtureErr = content.Load("../content/testdata/content.yaml")
	})
	return fixtureContent, fixtureErr
}

// env is one process worth of collaborators.
type env struct {
	content  *content.Store
	registry *instance.Registry
	cfg      character.Config
	now      time.Time
}

func newEnv() (*env, error) {
	c, err := loadContent()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		content:  c,
		registry: instance.NewRegistry(c, instance.WithRegistryLogger(logger)),
		now:      epoch,
	}
	e.cfg = character.Config{
		Content:       c,
		Registry:      e.registry,
		Gate:          instance.NewGate(c, nil, instance.GateConfig{MaxPerHour: 5}),
		Logger:        logger,
		Clock:         func() time.Time { return e.now },
		DeferredRetry: 2 * time.Second,
	}
	return e, nil
}

func (e *env) player() *character.Player {
	return character.NewPlayer(e.cfg, charGUID, account, nil)
}

// load builds a player from batch and returns it with its repair
// transaction.
func (e *env) load(batch *store.LoadBatch) (*character.Player, *store.Transaction, error) {
	p := e.player()
	repair := store.NewTransaction(store.ScopeCharacter)
	err := p.LoadFromDB(context.Background(), character.LoadIdentity{GUID: charGUID, Account: account}, batch, repair)
	return p, repair, err
}

// save builds a save into fresh transactions.
func save(p *character.Player, create bool) (character.SaveResult, *store.Transaction, *store.Transaction, error) {
	login := store.NewTransaction(store.ScopeLogin)
	char := store.NewTransaction(store.ScopeCharacter)
	res, err := p.SaveToDB(context.Background(), login, char, create)
	return res, char, login, err
}

// warrior is a level 10 human warrior standing in Northshire.
func warrior() *store.CharacterRow {
	return &store.CharacterRow{
		Guid:                 charGUID,
		Account:              account,
		Name:                 "Anduin",
		Race:                 1,
		Class:                1,
		Level:                10,
		Map:                  int32(northshire.Map),
		X:                    northshire.X,
		Y:                    northshire.Y,
		Z:                    northshire.Z,
		DungeonDifficulty:    int16(content.DifficultyNormal),
		RaidDifficulty:       int16(content.DifficultyNormalRaid),
		LegacyRaidDifficulty: int16(content.Difficulty10N),
		Health:               100,
		TaxiPath:             []int32{},
		LogoutTime:           epoch.Add(-time.Hour).Unix(),
	}
}

func homebind() *store.HomebindRow {
	return &store.HomebindRow{
		PositionRow: store.PositionRow{Map: int32(northshire.Map), X: northshire.X, Y: northshire.Y, Z: northshire.Z},
		Zone:        12,
	}
}

// baseBatch is a clean character with no repairs to make.
func baseBatch() *store.LoadBatch {
	return &store.LoadBatch{Character: warrior(), Homebind: homebind()}
}

// fullBatch is a clean character with something in most facets.
func fullBatch() *store.LoadBatch {
	b := baseBatch()
	b.Currencies = []store.CurrencyRow{{Currency: int32(currencyHonor), Quantity: 1500, WeeklyQuantity: 200}}
	b.Skills = []store.SkillRow{{Skill: int32(skillSmith), Value: 75, Max: 150}}
	b.Spells = []store.SpellRow{{Spell: int32(spellFire), Active: true}}
	b.Auras = []store.AuraRow{{
		CasterGuid: charGUID, Spell: int32(spellFort), EffectMask: 1, StackCount: 1,
		MaxDuration: -1, Amounts: []int32{3},
	}}
	b.QuestStatus = []store.QuestStatusRow{{Quest: int32(questHogger), Status: 3, AcceptTime: epoch.Add(-2 * time.Hour).Unix(), Objectives: []int32{4}}}
	b.QuestRewarded = []store.QuestRewardedRow{{Quest: int32(questKey), Active: true}}
	b.Items = []store.ItemRow{
		{Guid: 5001, Entry: int32(itemSword), Count: 1, Slot: 15, Charges: []int32{}},
		{Guid: 5002, Entry: int32(itemBread), Count: 4, Slot: 23, Charges: []int32{}},
	}
	b.Actions = []store.ActionRow{{Spec: 0, Button: 0, Action: int64(spellFire), Type: 0}}
	b.Achievements = []store.AchievementRow{{Achievement: 4396, Date: epoch.Add(-48 * time.Hour).Unix()}}
	return b
}

// bindRow is a character bind row for a fresh instance.
func bindRow(id uint32, mapID uint32, d content.Difficulty, permanent bool) store.BindRow {
	return store.BindRow{
		Map:         int32(mapID),
		Difficulty:  int16(d),
		Instance:    int32(id),
		Permanent:   permanent,
		ExtendState: int16(instance.ExtendNormal),
		ResetTime:   epoch.Add(24 * time.Hour).Unix(),
	}
}

func count(tx *store.Transaction, ids ...store.StatementID) int {
	n := 0
	for _, id := range ids {
		n += tx.Count(id)
	}
	return n
}
