// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/access"
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Placement fallbacks, in the order they are tried.
const (
	rungSaved        = "saved"
	rungEntrance     = "entrance"
	rungBattleground = "battleground"
	rungTransport    = "transport"
	rungTaxi         = "taxi"
	rungHomebind     = "homebind"
	rungStart        = "start"
)

// EntryCheck is the combined outcome of the instance gate and the map's
// access requirement.
type EntryCheck struct {
	Difficulty content.Difficulty
	Enter      instance.EnterResult
	Access     access.Result
}

// OK reports whether both the gate and the requirement allow entry.
func (c EntryCheck) OK() bool { return c.Enter.OK() && c.Access.OK() }

// CheckEntry evaluates entering mapID at the difficulty the character (or
// its group) has selected.
func (p *Player) CheckEntry(mapID uint32) EntryCheck {
	c := p.cfg.Content
	info, ok := c.Map(mapID)
	if !ok {
		return EntryCheck{Enter: instance.EnterResult{Reason: instance.DenyMapNotFound}}
	}
	d := p.Difficulties().For(c, info)
	return p.checkEntry(mapID, d)
}

func (p *Player) checkEntry(mapID uint32, d content.Difficulty) EntryCheck {
	res := EntryCheck{Difficulty: d, Access: access.Result{Effect: access.EffectAllow}}
	if p.cfg.Gate != nil {
		var gv instance.GroupView
		if p.group != nil {
			gv = p.group
		}
		res.Enter = p.cfg.Gate.CanEnter(instance.EntryRequest{
			MapID:      mapID,
			Difficulty: d,
			GameMaster: p.GameMaster(),
			Binds:      p.binds,
			Group:      gv,
			Times:      p.times,
			Now:        p.now(),
		})
	}
	if req, ok := p.cfg.Content.AccessRequirement(mapID, d); ok {
		res.Access = access.Evaluate(p, &req, p.accessTarget(mapID, d))
	}
	return res
}

// accessTarget builds the group context of an access check. A grouped
// character is judged on its leader's achievements; when the leader is not
// online here the achievement check fails.
func (p *Player) accessTarget(mapID uint32, d content.Difficulty) access.Target {
	t := access.Target{MapID: mapID, Difficulty: d}
	if p.group == nil {
		return t
	}
	t.Grouped = true
	switch leader := p.group.Leader(); {
	case leader == p.guid:
		t.Leader = p
	case p.cfg.Roster != nil:
		if a, ok := p.cfg.Roster.Achiever(leader); ok {
			t.Leader = a
		}
	}
	return t
}

// placement puts the character somewhere it can be: the saved position if
// it is still enterable, otherwise the first usable fallback.
func (s *loadState) placement() error {
	p := s.p
	c := p.cfg.Content
	pos := p.base.Position
	info, known := c.Map(pos.Map)

	if known && p.base.TransportGUID == 0 && len(p.base.TaxiPath) == 0 && !info.IsBattleground() {
		if !info.IsInstance() {
			return nil
		}
		check := p.checkEntry(pos.Map, p.Difficulties().For(c, info))
		if check.OK() {
			var id uint32
			if check.Enter.Save != nil {
				id = check.Enter.Save.ID()
			}
			if id != p.base.InstanceID {
				p.base.InstanceID = id
				p.baseDirty = true
			}
			return nil
		}
		if info.Entrance != nil {
			if _, ok := c.Map(info.Entrance.Map); ok {
				p.relocate(*info.Entrance, rungEntrance)
				return nil
			}
		}
	}

	if known && info.IsBattleground() && p.battleground != nil {
		bg := p.battleground
		s.r.delete("battleground", store.CharDelBattlegroundData, p.guid)
		p.battleground = nil
		if _, ok := c.Map(uint32(bg.Map)); ok {
			p.relocate(content.Location{Map: uint32(bg.Map), X: bg.X, Y: bg.Y, Z: bg.Z, O: bg.O}, rungBattleground)
			return nil
		}
	}

	if p.base.TransportGUID != 0 {
		if p.cfg.Transports != nil {
			if loc, ok := p.cfg.Transports.Transport(p.base.TransportGUID); ok {
				p.relocate(loc, rungTransport)
				return nil
			}
		}
		p.base.TransportGUID = 0
		p.baseDirty = true
	}

	if len(p.base.TaxiPath) > 0 {
		node, ok := c.TaxiNode(p.base.TaxiPath[0])
		p.base.TaxiPath = nil
		p.baseDirty = true
		if ok {
			p.relocate(node.Location, rungTaxi)
			return nil
		}
	}

	if _, ok := c.Map(p.homebind.Location.Map); ok {
		p.relocate(p.homebind.Location, rungHomebind)
		return nil
	}

	start, _ := c.PlayerCreate(p.base.Race, p.base.Class)
	p.relocate(start.Start, rungStart)
	return nil
}

// relocate moves the character outside any instance.
func (p *Player) relocate(loc content.Location, rung string) {
	from := p.base.Position
	p.base.Position = loc
	p.base.InstanceID = 0
	p.baseDirty = true
	placements.WithLabelValues(rung).Inc()
	p.logger.Info("character relocated", "rung", rung, "from_map", from.Map, "to_map", loc.Map)
}
