// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

func newTestEnv(t *testing.T) *env {
	t.Helper()
	e, err := newEnv()
	require.NoError(t, err)
	return e
}

func TestLoadFromDB_Refused(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *store.LoadBatch)
		want   character.LoadFailReason
	}{
		{"missing row", func(b *store.LoadBatch) { b.Character = nil }, character.LoadNotFound},
		{"other account", func(b *store.LoadBatch) { b.Character.Account = 8 }, character.LoadAccountMismatch},
		{"banned", func(b *store.LoadBatch) { b.Banned = true }, character.LoadBanned},
		{"unknown race", func(b *store.LoadBatch) { b.Character.Race = 3 }, character.LoadInvalidRaceClass},
		{"unplayable combination", func(b *store.LoadBatch) {
			b.Character.Race, b.Character.Class = 2, 8
		}, character.LoadInvalidRaceClass},
		{"skin outside race limits", func(b *store.LoadBatch) { b.Character.Skin = 20 }, character.LoadInvalidAppearance},
		{"negative hair color", func(b *store.LoadBatch) { b.Character.HairColor = -1 }, character.LoadInvalidAppearance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			b := baseBatch()
			tt.mutate(b)

			_, _, err := e.load(b)
			require.Error(t, err)
			var le *character.LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.want, le.Reason)
			assert.Equal(t, charGUID, le.GUID)
			errutil.AssertOops(t, err, "CHARACTER_LOAD_FAILED", "guid", charGUID, "reason", tt.want.String())
		})
	}
}

func TestLoadFromDB_ReservedName(t *testing.T) {
	e := newTestEnv(t)
	names, err := character.NewNameFilter([]string{"gm*"})
	require.NoError(t, err)
	e.cfg.Names = names
	b := baseBatch()
	b.Character.Name = "Gmthrall"

	_, _, err = e.load(b)
	var le *character.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, character.LoadInvalidName, le.Reason)
}

func TestLoadFromDB_RejectsLoginScopeRepair(t *testing.T) {
	e := newTestEnv(t)
	p := e.player()
	err := p.LoadFromDB(t.Context(), character.LoadIdentity{GUID: charGUID, Account: account},
		baseBatch(), store.NewTransaction(store.ScopeLogin))
	errutil.AssertErrorCode(t, err, "LOAD_SCOPE_MISMATCH")
}

func TestLoadFromDB_CleanCharacterNeedsNoRepair(t *testing.T) {
	e := newTestEnv(t)
	p, repair, err := e.load(fullBatch())
	require.NoError(t, err)

	assert.True(t, repair.Empty())
	assert.False(t, p.Dirty())
	assert.Equal(t, "Anduin", p.Base().Name)
	assert.Equal(t, uint8(10), p.Level())
	assert.Equal(t, northshire, p.Position())
	assert.Equal(t, uint32(1500), p.Currencies().Quantity(currencyHonor))
	assert.True(t, p.Spells().Known(spellFire))
	assert.True(t, p.HasRewardedQuest(questKey))
	assert.Equal(t, character.QuestIncomplete, p.Quests().Status(questHogger))
	assert.Equal(t, 2, p.Inventory().Len())
	assert.True(t, p.HasAchievement(4396))
	assert.True(t, p.HasAura(spellFort))
}

func TestLoadFromDB_RepairsMissingHomebind(t *testing.T) {
	tests := []struct {
		name string
		row  *store.HomebindRow
	}{
		{"no row", nil},
		{"unknown map", &store.HomebindRow{PositionRow: store.PositionRow{Map: int32(mapRemoved)}, Zone: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			b := baseBatch()
			b.Homebind = tt.row

			p, repair, err := e.load(b)
			require.NoError(t, err)
			assert.Equal(t, northshire, p.Homebind().Location)
			assert.Equal(t, uint32(12), p.Homebind().Zone)
			assert.Equal(t, 1, repair.Count(store.CharRepHomebind))
		})
	}
}

func TestLoadFromDB_ClampsLevel(t *testing.T) {
	tests := []struct {
		name  string
		level int16
		want  uint8
	}{
		{"zero", 0, 1},
		{"above cap", 85, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			b := baseBatch()
			b.Character.Level = tt.level

			p, _, err := e.load(b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Level())

			_, char, _, err := save(p, false)
			require.NoError(t, err)
			assert.Equal(t, 1, char.Count(store.CharUpdCharacter))
		})
	}
}

func TestLoadFromDB_DeletesUnknownRows(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Spells = []store.SpellRow{{Spell: 424242, Active: true}, {Spell: int32(spellFire), Active: true}}
	b.Auras = []store.AuraRow{{CasterGuid: charGUID, Spell: 424242, EffectMask: 1}}
	b.Actions = []store.ActionRow{{Spec: 0, Button: 200, Action: 1}, {Spec: 3, Button: 1, Action: 1}}
	b.Binds = []store.BindRow{bindRow(40, mapRemoved, content.DifficultyNormal, false)}

	p, repair, err := e.load(b)
	require.NoError(t, err)

	assert.Equal(t, 1, repair.Count(store.CharDelSpell))
	assert.Equal(t, 1, repair.Count(store.CharDelAura))
	assert.Equal(t, 2, repair.Count(store.CharDelAction))
	assert.Equal(t, 1, repair.Count(store.CharDelBind))
	assert.True(t, p.Spells().Known(spellFire))
	assert.False(t, p.Spells().Known(424242))
	assert.Zero(t, p.Binds().Len())
	assert.Zero(t, e.registry.Len())
}

func TestLoadFromDB_InvalidSkillIsDeletedOnSave(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Skills = []store.SkillRow{
		{Skill: int32(skillSmith), Value: 400, Max: 300},
		{Skill: 171, Value: 10, Max: 75},
	}

	p, repair, err := e.load(b)
	require.NoError(t, err)
	assert.True(t, repair.Empty())
	assert.False(t, p.Skills().Has(skillSmith))
	assert.True(t, p.Skills().Has(171))

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, char.Count(store.CharDelSkill))
	assert.Equal(t, 1, char.Len())
}

func TestLoadFromDB_CurrencyAboveCap(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Currencies = []store.CurrencyRow{{Currency: int32(currencyHonor), Quantity: 80000}, {Currency: 999, Quantity: 1}}

	p, _, err := e.load(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(75000), p.Currencies().Quantity(currencyHonor))
	_, ok := p.Currencies().Get(999)
	assert.False(t, ok)

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, char.Count(store.CharUpdCurrency))
}

func TestLoadFromDB_QuestStatusOfRewardedQuestIsDropped(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.QuestRewarded = []store.QuestRewardedRow{{Quest: int32(questKey), Active: true}, {Quest: 31337}}
	b.QuestStatus = []store.QuestStatusRow{
		{Quest: int32(questKey), Status: 1},
		{Quest: 31337, Status: 3},
		{Quest: int32(questHogger), Status: 9},
	}

	p, repair, err := e.load(b)
	require.NoError(t, err)
	assert.Equal(t, 1, repair.Count(store.CharDelQuestStatus))
	assert.True(t, p.HasRewardedQuest(questKey))
	assert.False(t, p.HasRewardedQuest(31337))
	assert.Equal(t, character.QuestIncomplete, p.Quests().Status(questHogger))
}

func TestLoadFromDB_ItemRepairs(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Items = []store.ItemRow{
		{Guid: 1, Entry: int32(itemSword), Count: 1, Slot: 15},
		{Guid: 2, Entry: int32(itemMissing), Count: 1, Slot: 24},
		// Its lifetime ended a minute after logout.
		{Guid: 3, Entry: int32(itemStone), Count: 1, Slot: 25, ExpiresAt: epoch.Add(-59 * time.Minute).Unix()},
		{Guid: 4, Entry: int32(itemBread), Count: 1, Slot: 23, RefundDeadline: epoch.Add(-time.Minute).Unix()},
		{Guid: 5, Entry: int32(itemBread), Count: 2, Slot: 23},
		{Guid: 6, Entry: int32(itemBread), Count: 3, Bag: 9999, Slot: 2},
	}

	p, repair, err := e.load(b)
	require.NoError(t, err)

	assert.Equal(t, 2, repair.Count(store.CharDelItem))
	inv := p.Inventory()
	assert.Equal(t, 4, inv.Len())

	refunded, ok := inv.Get(4)
	require.True(t, ok)
	assert.True(t, refunded.RefundDeadline.IsZero())

	moved, ok := inv.Get(5)
	require.True(t, ok)
	assert.Equal(t, int16(24), moved.Slot)

	orphan, ok := inv.Get(6)
	require.True(t, ok)
	assert.Equal(t, int64(0), orphan.Bag)
	assert.Equal(t, int16(25), orphan.Slot)

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	assert.Equal(t, 3, char.Count(store.CharRepItem))
}

func TestLoadFromDB_ItemsInEquippedBag(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Items = []store.ItemRow{
		{Guid: 11, Entry: int32(itemBread), Count: 1, Bag: 10, Slot: 0},
		{Guid: 12, Entry: int32(itemBread), Count: 1, Bag: 10, Slot: 6},
		{Guid: 10, Entry: int32(itemPouch), Count: 1, Slot: 19},
	}

	p, repair, err := e.load(b)
	require.NoError(t, err)
	assert.True(t, repair.Empty())

	inBag, ok := p.Inventory().At(10, 0)
	require.True(t, ok)
	assert.Equal(t, int64(11), inBag.GUID)

	// The pouch has six slots; slot 6 does not exist.
	past, ok := p.Inventory().Get(12)
	require.True(t, ok)
	assert.Equal(t, int64(0), past.Bag)
	assert.Equal(t, character.BackpackSlotStart, past.Slot)
}

func TestLoadFromDB_StatsAndClamp(t *testing.T) {
	e := newTestEnv(t)
	b := fullBatch()
	b.Character.Health = 5000
	b.Items = append(b.Items, store.ItemRow{Guid: 5003, Entry: int32(itemTunic), Count: 1, Slot: 4})

	p, _, err := e.load(b)
	require.NoError(t, err)

	// 60 base, 18 per level past the first, 10 per point of stamina from
	// the tunic (7) and the fortitude aura (3).
	want := uint32(60 + 18*9 + 10*(7+3))
	assert.Equal(t, want, p.Stats().MaxHealth)
	assert.Equal(t, want, p.Base().Health)
	assert.True(t, p.Collections().HasItemAppearance(1401))
}

func TestLoadFromDB_Placement(t *testing.T) {
	sfkEntrance := content.Location{Map: mapEasternKingdoms, X: -234.6, Y: 1561.6, Z: 76.9, O: 1.2}
	taxiNode := content.Location{Map: mapEasternKingdoms, X: -8835.76, Y: 490.084, Z: 109.616}
	orgrimmar := content.Location{Map: mapKalimdor, X: 1629.36, Y: -4373.39, Z: 31.25, O: 3.54}

	tests := []struct {
		name   string
		mutate func(b *store.LoadBatch)
		want   content.Location
	}{
		{"saved open world position", func(*store.LoadBatch) {}, northshire},
		{"removed map falls back to homebind", func(b *store.LoadBatch) {
			b.Character.Map = int32(mapRemoved)
			b.Homebind = &store.HomebindRow{
				PositionRow: store.PositionRow{Map: int32(orgrimmar.Map), X: orgrimmar.X, Y: orgrimmar.Y, Z: orgrimmar.Z, O: orgrimmar.O},
				Zone:        1637,
			}
		}, orgrimmar},
		{"removed map and no homebind", func(b *store.LoadBatch) {
			b.Character.Map = int32(mapRemoved)
			b.Homebind = nil
		}, northshire},
		{"dungeon refused by its requirement", func(b *store.LoadBatch) {
			b.Character.Map = int32(mapShadowfang)
			b.Character.DungeonDifficulty = int16(content.DifficultyHeroic)
		}, sfkEntrance},
		{"taxi flight", func(b *store.LoadBatch) {
			b.Character.TaxiPath = []int32{2, 5}
		}, taxiNode},
		{"transport that is gone", func(b *store.LoadBatch) {
			b.Character.TransportGuid = 77
		}, northshire},
		{"battleground", func(b *store.LoadBatch) {
			b.Character.Map = int32(mapWarsong)
			b.Battleground = &store.BattlegroundRow{
				PositionRow: store.PositionRow{Map: int32(orgrimmar.Map), X: orgrimmar.X, Y: orgrimmar.Y, Z: orgrimmar.Z, O: orgrimmar.O},
			}
		}, orgrimmar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			b := baseBatch()
			tt.mutate(b)

			p, _, err := e.load(b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Position())
			assert.Zero(t, p.Base().InstanceID)
			assert.Zero(t, p.Base().TransportGUID)
			assert.Empty(t, p.Base().TaxiPath)
		})
	}
}

func TestLoadFromDB_BattlegroundDataIsCleared(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Character.Map = int32(mapWarsong)
	b.Battleground = &store.BattlegroundRow{PositionRow: store.PositionRow{Map: int32(mapKalimdor)}}

	p, repair, err := e.load(b)
	require.NoError(t, err)
	assert.Equal(t, mapKalimdor, p.Position().Map)
	assert.Equal(t, 1, repair.Count(store.CharDelBattlegroundData))
}

type transports map[int64]content.Location

func (t transports) Transport(guid int64) (content.Location, bool) {
	loc, ok := t[guid]
	return loc, ok
}

func TestLoadFromDB_PlacesOnLiveTransport(t *testing.T) {
	e := newTestEnv(t)
	deck := content.Location{Map: mapKalimdor, X: 1, Y: 2, Z: 3}
	e.cfg.Transports = transports{77: deck}
	b := baseBatch()
	b.Character.TransportGuid = 77

	p, _, err := e.load(b)
	require.NoError(t, err)
	assert.Equal(t, deck, p.Position())
}

func TestLoadFromDB_StaysInEnterableDungeon(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	b.Character.Map = int32(mapShadowfang)
	b.Character.InstanceID = 40
	b.Binds = []store.BindRow{bindRow(40, mapShadowfang, content.DifficultyNormal, false)}

	p, _, err := e.load(b)
	require.NoError(t, err)
	assert.Equal(t, mapShadowfang, p.Position().Map)
	assert.Equal(t, uint32(40), p.Base().InstanceID)
	assert.False(t, p.Dirty())

	bind, ok := p.Binds().Get(mapShadowfang, content.DifficultyNormal)
	require.True(t, ok)
	assert.Equal(t, uint32(40), bind.Save().ID())
}
