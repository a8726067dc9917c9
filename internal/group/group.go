// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package group holds party and raid groups: their difficulty settings and
// the instance binds owned by the group itself.
package group

import (
	"log/slog"
	"sync"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Flags is the group type bitmask stored in the groups table.
type Flags uint8

// Group flags.
const (
	FlagRaid Flags = 0x02
	FlagLFG  Flags = 0x08
)

// Group is a party or raid. Every member's session reaches the same Group
// through the Directory, so all state is guarded by mu. Bind changes are
// written to an outbox that the writer's save drains: the leader while it
// is online, otherwise the online member with the lowest guid. A drained
// statement stays queued on that character until it commits.
type Group struct {
	guid   int64
	logger *slog.Logger

	mu           sync.Mutex
	leader       int64
	flags        Flags
	difficulties instance.Difficulties
	binds        *instance.BindStore
	outbox       *store.Transaction
	online       map[int64]struct{}
}

// Option configures a Group.
type Option func(*Group)

// WithLogger sets the logger used for discarded rows.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Group) {
		g.logger = logger
	}
}

// New creates a party led by leader with default difficulties.
func New(guid, leader int64, reg *instance.Registry, opts ...Option) *Group {
	g := &Group{
		guid:         guid,
		leader:       leader,
		difficulties: instance.DefaultDifficulties,
		binds:        instance.NewBindStore(reg, instance.GroupOwner(guid)),
		outbox:       store.NewTransaction(store.ScopeCharacter),
		online:       make(map[int64]struct{}),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromRow restores a group from its stored row. Binds are loaded
// separately with LoadBinds.
func FromRow(row store.GroupRow, reg *instance.Registry, opts ...Option) *Group {
	g := New(row.Guid, row.LeaderGuid, reg, opts...)
	g.flags = Flags(row.GroupType)
	g.difficulties = instance.Difficulties{
		Dungeon:    content.Difficulty(row.DungeonDifficulty),
		Raid:       content.Difficulty(row.RaidDifficulty),
		LegacyRaid: content.Difficulty(row.LegacyRaidDifficulty),
	}
	return g
}

// GUID returns the group id.
func (g *Group) GUID() int64 { return g.guid }

// Owner returns the bind owner standing for the group.
func (g *Group) Owner() instance.Owner { return g.binds.Owner() }

// Leader returns the leader's character guid.
func (g *Group) Leader() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.leader
}

// SetLeader hands leadership to guid. Statements still in the outbox move
// with it.
func (g *Group) SetLeader(guid int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leader = guid
}

// Attach records guid as a member loaded in the world.
func (g *Group) Attach(guid int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.online[guid] = struct{}{}
}

// Detach records that guid left the world or the group. Statements it
// already drained stay with its character.
func (g *Group) Detach(guid int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.online, guid)
}

// Writer returns the member whose save carries the outbox, or 0 when no
// member is online.
func (g *Group) Writer() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.online[g.leader]; ok {
		return g.leader
	}
	var writer int64
	for guid := range g.online {
		if writer == 0 || guid < writer {
			writer = guid
		}
	}
	return writer
}

// IsRaid reports whether the group is a raid.
func (g *Group) IsRaid() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags&FlagRaid != 0
}

// ConvertToRaid turns a party into a raid.
func (g *Group) ConvertToRaid() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags |= FlagRaid
}

// Difficulties returns the group's difficulty settings.
func (g *Group) Difficulties() instance.Difficulties {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.difficulties
}

// BindCount returns the number of live group binds.
func (g *Group) BindCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	return g.binds.Len()
}

// Bound returns a copy of the group's bind for (map, difficulty).
func (g *Group) Bound(mapID uint32, d content.Difficulty) (*instance.Bind, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	b, ok := g.binds.Get(mapID, d)
	if !ok {
		return nil, false
	}
	cp := *b
	return &cp, true
}

// BoundSave returns the save the group is bound to for (map, difficulty).
func (g *Group) BoundSave(mapID uint32, d content.Difficulty) (*instance.Save, bool) {
	b, ok := g.Bound(mapID, d)
	if !ok {
		return nil, false
	}
	return b.Save(), true
}

// LoadBinds restores the group's binds. Rows for maps the content no
// longer knows are deleted through repair. It returns how many rows were
// discarded.
func (g *Group) LoadBinds(rows []store.GroupBindRow, repair *store.Transaction) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	reg := g.binds.Registry()
	discarded := 0
	for _, r := range rows {
		if _, ok := reg.Content().Map(uint32(r.Map)); !ok {
			discarded++
			g.logger.Warn("dropping group bind to unknown map", "group", g.guid, "map", r.Map)
			repair.Append(store.CharDelGroupBind, g.guid, r.Map, r.Difficulty)
			continue
		}
		save := reg.Ensure(store.InstanceRow{
			ID:                  r.Instance,
			Map:                 r.Map,
			Difficulty:          r.Difficulty,
			ResetTime:           r.ResetTime,
			CompletedEncounters: r.CompletedEncounters,
			Data:                r.Data,
		})
		g.binds.Load(save, r.Permanent, instance.ExtendNormal)
	}
	return discarded
}

// Enter binds the group to the instance a member is entering. An existing
// group bind wins over save. With neither, a new instance is created. The
// instance insert and the bind insert share the outbox, so they commit in
// order with the leader's save.
func (g *Group) Enter(save *instance.Save, mapID uint32, d content.Difficulty, now time.Time) *instance.Save {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	if b, ok := g.binds.Get(mapID, d); ok {
		return b.Save()
	}
	// save may have been reset since the entry check looked at it
	if save == nil || save.Deleted() {
		save = g.binds.Registry().Create(g.outbox, mapID, d, now)
	}
	g.binds.Bind(save, false, instance.ExtendKeep)
	return save
}

// ResetInstances resets the group's resettable instances at d.
func (g *Group) ResetInstances(method instance.ResetMethod, isRaid bool, d content.Difficulty, world instance.World) instance.ResetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	return g.binds.ResetInstances(method, isRaid, d, world, g.outbox)
}

// SetDungeonDifficulty changes the dungeon difficulty. Binds at the old
// difficulty are reset first, as the group can no longer enter them.
func (g *Group) SetDungeonDifficulty(d content.Difficulty, world instance.World) instance.ResetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	if d == g.difficulties.Dungeon {
		return instance.ResetReport{}
	}
	report := g.binds.ResetInstances(instance.ResetChangeDifficulty, false, g.difficulties.Dungeon, world, g.outbox)
	g.difficulties.Dungeon = d
	return report
}

// SetRaidDifficulty changes the raid difficulty, resetting binds at the old
// one.
func (g *Group) SetRaidDifficulty(d content.Difficulty, world instance.World) instance.ResetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	if d == g.difficulties.Raid {
		return instance.ResetReport{}
	}
	report := g.binds.ResetInstances(instance.ResetChangeDifficulty, true, g.difficulties.Raid, world, g.outbox)
	g.difficulties.Raid = d
	return report
}

// SetLegacyRaidDifficulty changes the legacy raid difficulty, resetting
// binds at the old one.
func (g *Group) SetLegacyRaidDifficulty(d content.Difficulty, world instance.World) instance.ResetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	if d == g.difficulties.LegacyRaid {
		return instance.ResetReport{}
	}
	report := g.binds.ResetInstances(instance.ResetChangeDifficulty, true, g.difficulties.LegacyRaid, world, g.outbox)
	g.difficulties.LegacyRaid = d
	return report
}

// Disband dissolves the group. Empty instances are reset, and every
// remaining group bind is removed. The deletes wait in the outbox for the
// next Drain.
func (g *Group) Disband(world instance.World) instance.ResetReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.flush()
	var report instance.ResetReport
	for _, pass := range []struct {
		raid bool
		d    content.Difficulty
	}{
		{false, g.difficulties.Dungeon},
		{true, g.difficulties.Raid},
		{true, g.difficulties.LegacyRaid},
	} {
		r := g.binds.ResetInstances(instance.ResetGroupDisband, pass.raid, pass.d, world, g.outbox)
		report.Reset = append(report.Reset, r.Reset...)
		report.Refused = append(report.Refused, r.Refused...)
	}

	var remaining [][2]uint32
	g.binds.Each(func(mapID uint32, d content.Difficulty, _ *instance.Bind) bool {
		remaining = append(remaining, [2]uint32{mapID, uint32(d)})
		return true
	})
	for _, k := range remaining {
		g.binds.Unbind(k[0], content.Difficulty(k[1]), false)
	}
	return report
}

// Pending reports whether statements wait in the outbox.
func (g *Group) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.outbox.Empty()
}

// Drain moves the queued statements into tx, in the order the changes
// happened, and returns how many moved. The caller owns them from here on:
// it must keep tx until it commits.
func (g *Group) Drain(tx *store.Transaction) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.outbox.Len()
	tx.Merge(g.outbox)
	g.outbox = store.NewTransaction(store.ScopeCharacter)
	return n
}

// flush turns bind changes, including rollover pruning done by reads, into
// outbox statements. Callers hold mu.
func (g *Group) flush() {
	if g.binds.Dirty() == 0 {
		return
	}
	g.binds.EmitStatements(g.outbox)
	g.binds.Committed()
}

// Directory indexes the groups loaded in the process so that members
// loading later share one Group value.
type Directory struct {
	mu       sync.Mutex
	registry *instance.Registry
	groups   map[int64]*Group
}

// NewDirectory creates an empty directory whose groups bind through reg.
func NewDirectory(reg *instance.Registry) *Directory {
	return &Directory{registry: reg, groups: make(map[int64]*Group)}
}

// Get returns the loaded group with guid.
func (d *Directory) Get(guid int64) (*Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[guid]
	return g, ok
}

// Resolve returns the loaded group for row, restoring it from the row when
// it is not loaded yet. The second result reports whether the group was
// created by this call, in which case its binds still need loading.
func (d *Directory) Resolve(row store.GroupRow) (*Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if g, ok := d.groups[row.Guid]; ok {
		return g, false
	}
	g := FromRow(row, d.registry)
	d.groups[row.Guid] = g
	return g, true
}

// Remove forgets a disbanded group and releases its instance references.
func (d *Directory) Remove(guid int64) {
	d.mu.Lock()
	g, ok := d.groups[guid]
	delete(d.groups, guid)
	d.mu.Unlock()
	if ok {
		g.mu.Lock()
		g.binds.UnloadAll()
		g.mu.Unlock()
	}
}

// Len returns the number of loaded groups.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.groups)
}
