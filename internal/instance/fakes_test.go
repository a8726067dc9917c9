// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance_test

import (
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

const (
	mapCity    uint32 = 0
	mapDungeon uint32 = 10
	mapOther   uint32 = 33
	mapRaid    uint32 = 249
	mapArena   uint32 = 559

	week = 7 * 24 * time.Hour
	day  = 24 * time.Hour
)

var epoch = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

type fakeContent struct {
	maps  map[uint32]content.MapInfo
	diffs map[[2]uint32]content.MapDifficulty
}

func newFakeContent() *fakeContent {
	c := &fakeContent{
		maps:  make(map[uint32]content.MapInfo),
		diffs: make(map[[2]uint32]content.MapDifficulty),
	}
	c.addMap(mapCity, content.MapCommon)
	c.addMap(mapDungeon, content.MapDungeon,
		content.MapDifficulty{Difficulty: content.DifficultyNormal, MaxPlayers: 5},
		content.MapDifficulty{Difficulty: content.DifficultyHeroic, MaxPlayers: 5, ResetSeconds: int64(day / time.Second)})
	c.addMap(mapOther, content.MapDungeon,
		content.MapDifficulty{Difficulty: content.DifficultyNormal, MaxPlayers: 5})
	c.addMap(mapRaid, content.MapRaid,
		content.MapDifficulty{Difficulty: content.Difficulty10N, MaxPlayers: 10, ResetSeconds: int64(week / time.Second)},
		content.MapDifficulty{Difficulty: content.Difficulty10HC, MaxPlayers: 10, ResetSeconds: int64(week / time.Second)})
	c.addMap(mapArena, content.MapArena,
		content.MapDifficulty{Difficulty: content.DifficultyNone, MaxPlayers: 10})
	return c
}

func (c *fakeContent) addMap(id uint32, typ content.MapType, diffs ...content.MapDifficulty) {
	c.maps[id] = content.MapInfo{ID: id, Type: typ}
	for _, d := range diffs {
		d.Map = id
		c.diffs[[2]uint32{id, uint32(d.Difficulty)}] = d
	}
}

func (c *fakeContent) Map(id uint32) (content.MapInfo, bool) {
	m, ok := c.maps[id]
	return m, ok
}

func (c *fakeContent) MapDifficulty(mapID uint32, d content.Difficulty) (content.MapDifficulty, bool) {
	md, ok := c.diffs[[2]uint32{mapID, uint32(d)}]
	return md, ok
}

func (c *fakeContent) IsHeroic(d content.Difficulty) bool {
	return d == content.DifficultyHeroic || d == content.Difficulty10HC || d == content.Difficulty25HC
}

type fakeLive struct {
	players int
	combat  bool
	refuse  bool
	resets  int
}

func (l *fakeLive) PlayerCount() int { return l.players }
func (l *fakeLive) InCombat() bool   { return l.combat }

func (l *fakeLive) Reset(instance.ResetMethod) bool {
	if l.refuse {
		return false
	}
	l.resets++
	return true
}

// fakeWorld maps instance ids to live instances.
type fakeWorld map[uint32]*fakeLive

func (w fakeWorld) FindInstance(_, instanceID uint32) (instance.LiveInstance, bool) {
	l, ok := w[instanceID]
	if !ok {
		return nil, false
	}
	return l, true
}

type fakeGroup struct {
	raid  bool
	binds *instance.BindStore
}

func (g *fakeGroup) IsRaid() bool { return g.raid }

func (g *fakeGroup) BoundSave(mapID uint32, d content.Difficulty) (*instance.Save, bool) {
	if g.binds == nil {
		return nil, false
	}
	b, ok := g.binds.Get(mapID, d)
	if !ok {
		return nil, false
	}
	return b.Save(), true
}

func newRegistry() *instance.Registry {
	return instance.NewRegistry(newFakeContent())
}

// loadSave adds a stored instance record to reg.
func loadSave(reg *instance.Registry, id, mapID uint32, d content.Difficulty, reset time.Time) *instance.Save {
	row := store.InstanceRow{ID: int32(id), Map: int32(mapID), Difficulty: int16(d)}
	if !reset.IsZero() {
		row.ResetTime = reset.Unix()
	}
	return reg.Ensure(row)
}

func charTx() *store.Transaction {
	return store.NewTransaction(store.ScopeCharacter)
}
