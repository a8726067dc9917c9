// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/group"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
)

// teleport is an in-flight move to another map. While one is active the
// character belongs to neither map and saves are postponed.
type teleport struct {
	active bool
	dest   content.Location
}

func (t teleport) far() bool { return t.active }

// BeginFarTeleport starts a move to another map.
func (p *Player) BeginFarTeleport(dest content.Location) bool {
	if p.teleport.active {
		return false
	}
	if _, ok := p.cfg.Content.Map(dest.Map); !ok {
		return false
	}
	p.teleport = teleport{active: true, dest: dest}
	return true
}

// FinishFarTeleport lands the character at the teleport destination.
func (p *Player) FinishFarTeleport() (content.Location, bool) {
	if !p.teleport.active {
		return content.Location{}, false
	}
	dest := p.teleport.dest
	p.teleport = teleport{}
	if dest.Map != p.base.Position.Map {
		p.base.InstanceID = 0
	}
	p.base.Position = dest
	p.baseDirty = true
	return dest, true
}

// Teleporting reports whether a far teleport is in progress.
func (p *Player) Teleporting() bool { return p.teleport.active }

// EnterInstance moves the character into mapID at pos. It runs the entry
// checks, creates an instance when none is bound, binds the character (or
// its group) and records the entry against the hourly limit. The returned
// check says why entry was refused, if it was.
func (p *Player) EnterInstance(mapID uint32, pos content.Location) EntryCheck {
	check := p.CheckEntry(mapID)
	if !check.OK() {
		return check
	}
	pos.Map = mapID
	info, _ := p.cfg.Content.Map(mapID)
	if !info.IsInstance() || info.IsBattleground() {
		p.base.Position = pos
		p.base.InstanceID = 0
		p.baseDirty = true
		return check
	}

	now := p.now()
	save := check.Enter.Save
	if info.IsDungeon() && p.group != nil {
		// the group queues the instance row with its own bind
		save = p.group.Enter(save, mapID, check.Difficulty, now)
	} else {
		if save == nil {
			save = p.cfg.Registry.Create(p.pending, mapID, check.Difficulty, now)
		}
		if _, ok := p.binds.Get(mapID, check.Difficulty); !ok && info.IsDungeon() {
			p.binds.Bind(save, false, instance.ExtendKeep)
		}
	}
	if info.IsDungeon() {
		p.times.Record(save.ID(), now)
	}
	p.base.Position = pos
	p.base.InstanceID = save.ID()
	p.baseDirty = true
	check.Enter.Save = save
	return check
}

// BindToInstance ties the character to save, replacing any bind for the
// same map and difficulty. A permanent bind is a lockout and keeps the
// save from being reset.
func (p *Player) BindToInstance(save *instance.Save, permanent bool) *instance.Bind {
	return p.binds.Bind(save, permanent, instance.ExtendKeep)
}

// SetExtended asks for a permanent bind to be carried into the next reset
// period, or cancels that request.
func (p *Player) SetExtended(mapID uint32, d content.Difficulty, extended bool) bool {
	b, ok := p.binds.Get(mapID, d)
	if !ok || !b.Permanent() {
		return false
	}
	state := instance.ExtendNormal
	if extended {
		state = instance.ExtendExtended
	}
	p.binds.Bind(b.Save(), true, state)
	return true
}

// UnbindInstance drops the character's bind for (map, difficulty).
func (p *Player) UnbindInstance(mapID uint32, d content.Difficulty) bool {
	return p.binds.Unbind(mapID, d, false)
}

// ResetInstances resets the resettable dungeon or raid instances at the
// selected difficulties. A grouped character acts on the group's binds,
// and only as leader.
func (p *Player) ResetInstances(method instance.ResetMethod, isRaid bool) instance.ResetReport {
	if p.group != nil && !p.leadsGroup() {
		return instance.ResetReport{}
	}
	d := p.Difficulties()
	diffs := []content.Difficulty{d.Dungeon}
	if isRaid {
		diffs = []content.Difficulty{d.Raid, d.LegacyRaid}
	}
	var report instance.ResetReport
	for _, diff := range diffs {
		var r instance.ResetReport
		if p.group != nil {
			r = p.group.ResetInstances(method, isRaid, diff, p.cfg.World)
		} else {
			r = p.binds.ResetInstances(method, isRaid, diff, p.cfg.World, p.pending)
		}
		report.Reset = append(report.Reset, r.Reset...)
		report.Refused = append(report.Refused, r.Refused...)
	}
	return report
}

// SetDungeonDifficulty changes the dungeon difficulty. Binds at the old
// difficulty are reset. A grouped character changes the group's setting,
// and only as leader.
func (p *Player) SetDungeonDifficulty(d content.Difficulty) bool {
	if d == content.DifficultyNone {
		return false
	}
	if p.group != nil {
		if !p.leadsGroup() {
			return false
		}
		p.group.SetDungeonDifficulty(d, p.cfg.World)
		return true
	}
	if d == p.difficulties.Dungeon {
		return true
	}
	p.binds.ResetInstances(instance.ResetChangeDifficulty, false, p.difficulties.Dungeon, p.cfg.World, p.pending)
	p.difficulties.Dungeon = d
	p.baseDirty = true
	return true
}

// SetRaidDifficulty changes the raid difficulty, with the same rules as
// SetDungeonDifficulty.
func (p *Player) SetRaidDifficulty(d content.Difficulty) bool {
	if d == content.DifficultyNone {
		return false
	}
	if p.group != nil {
		if !p.leadsGroup() {
			return false
		}
		p.group.SetRaidDifficulty(d, p.cfg.World)
		return true
	}
	if d == p.difficulties.Raid {
		return true
	}
	p.binds.ResetInstances(instance.ResetChangeDifficulty, true, p.difficulties.Raid, p.cfg.World, p.pending)
	p.difficulties.Raid = d
	p.baseDirty = true
	return true
}

// JoinGroup makes the character a member of g. The character's own
// resettable binds are dropped, as the group's binds take over.
func (p *Player) JoinGroup(g *group.Group) (instance.ResetReport, bool) {
	if p.group != nil || g == nil {
		return instance.ResetReport{}, false
	}
	var report instance.ResetReport
	d := p.difficulties
	for _, pass := range []struct {
		raid bool
		d    content.Difficulty
	}{
		{false, d.Dungeon},
		{true, d.Raid},
		{true, d.LegacyRaid},
	} {
		r := p.binds.ResetInstances(instance.ResetGroupJoin, pass.raid, pass.d, p.cfg.World, p.pending)
		report.Reset = append(report.Reset, r.Reset...)
		report.Refused = append(report.Refused, r.Refused...)
	}
	p.group = g
	g.Attach(p.guid)
	return report, true
}

// LeaveGroup removes the character from its group.
func (p *Player) LeaveGroup() bool {
	if p.group == nil {
		return false
	}
	p.group.Detach(p.guid)
	p.group = nil
	return true
}

// DisbandGroup dissolves the character's group. Only the leader may do
// this. The group's outstanding statements move to the character and
// commit with its next save.
func (p *Player) DisbandGroup() (instance.ResetReport, bool) {
	if !p.leadsGroup() {
		return instance.ResetReport{}, false
	}
	g := p.group
	report := g.Disband(p.cfg.World)
	g.Drain(p.pending)
	g.Detach(p.guid)
	if p.cfg.Groups != nil {
		p.cfg.Groups.Remove(g.GUID())
	}
	p.group = nil
	return report, true
}

// RewardQuest turns in a completed quest and teaches its reward spell.
func (p *Player) RewardQuest(id uint32) bool {
	spell, ok := p.quests.Reward(id)
	if !ok {
		return false
	}
	if spell != 0 {
		p.spells.Learn(spell)
	}
	return true
}

// Equip moves an item from the bags into an equipment slot and recomputes
// stats.
func (p *Player) Equip(item int64, slot int16) bool {
	if slot < EquipmentSlotStart || slot >= EquipmentSlotEnd {
		return false
	}
	if !p.inventory.Move(item, 0, slot) {
		return false
	}
	if it, ok := p.inventory.Get(item); ok {
		p.collections.AddItemAppearance(it.Entry)
	}
	p.UpdateAllStats()
	return true
}

// LogOut releases everything the character holds in shared registries.
// The caller saves first; once detached, the group's outbox passes to the
// next online member.
func (p *Player) LogOut() {
	p.binds.UnloadAll()
	if p.group != nil {
		p.group.Detach(p.guid)
	}
	p.group = nil
}
