// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/internal/character"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

func loadPlayer(t *testing.T, e *env, b *store.LoadBatch) *character.Player {
	t.Helper()
	p, _, err := e.load(b)
	require.NoError(t, err)
	return p
}

func TestSaveToDB_CreateInsertsCharacterRow(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())

	res, char, login, err := save(p, true)
	require.NoError(t, err)

	require.Equal(t, 1, char.Len())
	stmt := char.Statements()[0]
	assert.Equal(t, store.CharInsCharacter, stmt.ID)
	require.Len(t, stmt.Args, 32)
	assert.Equal(t, charGUID, stmt.Args[0])
	assert.Equal(t, account, stmt.Args[1])
	assert.Equal(t, "Anduin", stmt.Args[2])
	assert.Equal(t, epoch.Unix(), stmt.Args[31])
	assert.True(t, login.Empty())
	assert.Equal(t, 1, res.CharStatements)
	assert.Equal(t, epoch, p.Base().LogoutTime)
}

func TestSaveToDB_UpdateOmitsAccount(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	require.True(t, p.ModifyMoney(250))

	_, char, _, err := save(p, false)
	require.NoError(t, err)

	require.Equal(t, 1, char.Len())
	stmt := char.Statements()[0]
	assert.Equal(t, store.CharUpdCharacter, stmt.ID)
	require.Len(t, stmt.Args, 31)
	assert.Equal(t, charGUID, stmt.Args[0])
	assert.Equal(t, int64(250), stmt.Args[7])
}

func TestSaveToDB_FreshlyLoadedIsEmpty(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, fullBatch())

	res, char, login, err := save(p, false)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.True(t, char.Empty())
	assert.True(t, login.Empty())
}

func TestSaveToDB_ScopeMismatch(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	login := store.NewTransaction(store.ScopeLogin)

	_, err := p.SaveToDB(t.Context(), login, login, false)
	errutil.AssertErrorCode(t, err, "SAVE_SCOPE_MISMATCH")

	_, err = p.SaveToDB(t.Context(), nil, store.NewTransaction(store.ScopeCharacter), false)
	errutil.AssertErrorCode(t, err, "SAVE_SCOPE_MISMATCH")
}

func TestSaveToDB_OneStatementPerDirtyEntity(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, fullBatch())

	require.True(t, p.Currencies().Modify(currencyHonor, 100))
	require.True(t, p.Spells().Learn(spellGhost))
	require.True(t, p.Spells().Unlearn(spellFire))
	require.True(t, p.Skills().Set(171, 1, 75))
	require.True(t, p.Inventory().Add(&character.Item{GUID: 6000, Entry: itemBread}, 0, 24, e.now))

	res, char, login, err := save(p, false)
	require.NoError(t, err)

	assert.Equal(t, 1, char.Count(store.CharUpdCurrency))
	assert.Equal(t, 1, char.Count(store.CharInsSpell))
	assert.Equal(t, 1, char.Count(store.CharDelSpell))
	assert.Equal(t, 1, char.Count(store.CharInsSkill))
	assert.Equal(t, 1, char.Count(store.CharRepItem))
	assert.Zero(t, char.Count(store.CharUpdCharacter), "the character row is untouched")
	assert.Equal(t, 5, res.CharStatements)
	assert.True(t, login.Empty())
}

func TestSaveCommitted_ResetsState(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, fullBatch())
	require.True(t, p.Spells().Unlearn(spellFire))
	require.True(t, p.Spells().Learn(spellGhost))
	require.True(t, p.Quests().Abandon(questHogger))

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	require.Equal(t, 3, char.Len())
	assert.True(t, p.Dirty())

	p.SaveCommitted()
	assert.False(t, p.Dirty())
	assert.False(t, p.Spells().Known(spellFire))
	assert.True(t, p.Spells().Known(spellGhost))

	res, _, _, err := save(p, false)
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestSaveToDB_UnacknowledgedSaveRepeats(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, fullBatch())
	require.True(t, p.Spells().Learn(spellGhost))

	_, first, _, err := save(p, false)
	require.NoError(t, err)
	_, second, _, err := save(p, false)
	require.NoError(t, err)

	assert.Equal(t, first.Statements(), second.Statements())
}

func TestSaveToDB_DeferredDuringFarTeleport(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	dest := content.Location{Map: mapKalimdor, X: 1629.36, Y: -4373.39, Z: 31.25}

	require.True(t, p.BeginFarTeleport(dest))
	assert.False(t, p.BeginFarTeleport(dest))

	res, char, login, err := save(p, false)
	require.NoError(t, err)
	assert.True(t, res.Deferred)
	assert.Equal(t, 2*time.Second, res.RetryAfter)
	assert.True(t, char.Empty())
	assert.True(t, login.Empty())

	got, ok := p.FinishFarTeleport()
	require.True(t, ok)
	assert.Equal(t, dest, got)
	assert.Equal(t, dest, p.Position())

	res, char, _, err = save(p, false)
	require.NoError(t, err)
	assert.False(t, res.Deferred)
	assert.Equal(t, 1, char.Count(store.CharUpdCharacter))
}

func TestSaveToDB_TimedEntitiesStoreTheirExpiry(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	require.True(t, p.Auras().Apply(&character.Aura{Caster: charGUID, Spell: spellFort, EffectMask: 1}, 10*time.Minute, e.now))
	require.True(t, p.Inventory().Add(&character.Item{GUID: 6100, Entry: itemStone}, 0, 23, e.now))

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	require.Equal(t, 1, char.Count(store.CharInsAura))
	require.Equal(t, 1, char.Count(store.CharRepItem))
	aura := char.Statements()[indexOf(char, store.CharInsAura)]
	assert.Equal(t, e.now.Add(10*time.Minute).UnixMilli(), aura.Args[8])
	item := char.Statements()[indexOf(char, store.CharRepItem)]
	assert.Equal(t, e.now.Add(900*time.Second).Unix(), item.Args[5])
	p.SaveCommitted()

	e.now = e.now.Add(time.Minute)
	res, _, _, err := save(p, false)
	require.NoError(t, err)
	assert.True(t, res.Empty())

	require.True(t, p.ModifyMoney(1))
	res, char, _, err = save(p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CharStatements)
	assert.Equal(t, 1, char.Count(store.CharUpdCharacter))
	assert.Zero(t, char.Count(store.CharUpdAura))
	assert.Zero(t, char.Count(store.CharRepItem))
}

func TestLoadFromDB_TimedEntitiesKeepTheirExpiry(t *testing.T) {
	e := newTestEnv(t)
	b := baseBatch()
	ends := e.now.Add(5 * time.Minute)
	b.Auras = []store.AuraRow{{CasterGuid: charGUID, Spell: int32(spellFort), EffectMask: 1, StackCount: 1,
		MaxDuration: int32((10 * time.Minute) / time.Millisecond), ExpiresAt: ends.UnixMilli()}}
	b.Items = []store.ItemRow{{Guid: 7, Entry: int32(itemStone), Count: 1, Slot: 23, ExpiresAt: ends.Unix()}}

	p, repair, err := e.load(b)
	require.NoError(t, err)
	assert.True(t, repair.Empty())

	aura, ok := p.Auras().Get(charGUID, spellFort, 1)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, aura.Remaining(e.now))
	it, ok := p.Inventory().Get(7)
	require.True(t, ok)
	assert.True(t, ends.Equal(it.Expires))
}

func TestSaveToDB_CollectionsGoToLogin(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	require.True(t, p.Collections().AddToy(54452, true))
	require.True(t, p.Collections().AddMount(458, false))

	res, char, login, err := save(p, false)
	require.NoError(t, err)
	assert.True(t, char.Empty())
	assert.Equal(t, 1, login.Count(store.LoginRepToy))
	assert.Equal(t, 1, login.Count(store.LoginRepMount))
	assert.Equal(t, 2, res.LoginStatements)
}

func TestSaveToDB_HomebindAndDeclinedNames(t *testing.T) {
	e := newTestEnv(t)
	p := loadPlayer(t, e, baseBatch())
	p.SetHomebind(content.Location{Map: mapKalimdor, X: 1, Y: 2, Z: 3}, 1637)
	p.DeclinedNames().Set([5]string{"a", "b", "c", "d", "e"})

	_, char, _, err := save(p, false)
	require.NoError(t, err)
	assert.Equal(t, 1, char.Count(store.CharRepHomebind))
	assert.Equal(t, 1, char.Count(store.CharDelDeclinedName))
	assert.Equal(t, 1, char.Count(store.CharInsDeclinedName))
	assert.Equal(t, 3, char.Len())
}
