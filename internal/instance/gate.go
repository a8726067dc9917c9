// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import (
	"fmt"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
)

// DenyReason says why an entry was refused. Each reason maps to its own
// client message.
type DenyReason uint8

// Entry outcomes.
const (
	EnterOK DenyReason = iota
	DenyMapNotFound
	DenyDifficultyUnavailable
	DenyNotInRaid
	DenyBindMismatch
	DenyMapFull
	DenyZoneInCombat
	DenyTooManyInstances
)

// String returns the reason name.
func (r DenyReason) String() string {
	switch r {
	case EnterOK:
		return "ok"
	case DenyMapNotFound:
		return "map_not_found"
	case DenyDifficultyUnavailable:
		return "difficulty_unavailable"
	case DenyNotInRaid:
		return "not_in_raid"
	case DenyBindMismatch:
		return "bind_mismatch"
	case DenyMapFull:
		return "map_full"
	case DenyZoneInCombat:
		return "zone_in_combat"
	case DenyTooManyInstances:
		return "too_many_instances"
	default:
		return fmt.Sprintf("deny(%d)", uint8(r))
	}
}

// GroupView is the part of a group the gate consults.
type GroupView interface {
	IsRaid() bool
	BoundSave(mapID uint32, d content.Difficulty) (*Save, bool)
}

// EntryRequest describes one attempt to enter a map.
type EntryRequest struct {
	MapID      uint32
	Difficulty content.Difficulty
	GameMaster bool
	// Binds are the character's own binds; nil for none.
	Binds *BindStore
	Group GroupView
	Times *EntryTimes
	Now   time.Time
}

// EnterResult is the gate's decision. Save is the instance the character
// would join; nil means a new instance would be created.
type EnterResult struct {
	Reason DenyReason
	Save   *Save
}

// OK reports whether entry is allowed.
func (r EnterResult) OK() bool { return r.Reason == EnterOK }

// GateConfig holds the instance entry rules.
type GateConfig struct {
	// MaxPerHour caps new instances per account in EntryWindow. Zero
	// disables the cap.
	MaxPerHour           int
	ForbidCombatTransfer bool
	RequireRaidGroup     bool
}

// Gate decides whether a character may enter an instanced map.
type Gate struct {
	content Content
	world   World
	cfg     GateConfig
}

// NewGate creates a gate. A nil world means nothing is loaded.
func NewGate(c Content, w World, cfg GateConfig) *Gate {
	if w == nil {
		w = NoWorld{}
	}
	return &Gate{content: c, world: w, cfg: cfg}
}

// CanEnter evaluates req. Non-instanced maps are always enterable; game
// masters skip everything past the difficulty check.
func (g *Gate) CanEnter(req EntryRequest) EnterResult {
	res := g.canEnter(req)
	if !res.OK() {
		entryDenied.WithLabelValues(res.Reason.String()).Inc()
	}
	return res
}

func (g *Gate) canEnter(req EntryRequest) EnterResult {
	info, ok := g.content.Map(req.MapID)
	if !ok {
		return EnterResult{Reason: DenyMapNotFound}
	}
	if !info.IsInstance() {
		return EnterResult{}
	}
	md, ok := g.content.MapDifficulty(req.MapID, req.Difficulty)
	if !ok {
		return EnterResult{Reason: DenyDifficultyUnavailable}
	}

	var own *Bind
	if req.Binds != nil {
		own, _ = req.Binds.Get(req.MapID, req.Difficulty)
	}
	var target *Save
	if req.Group != nil {
		if s, ok := req.Group.BoundSave(req.MapID, req.Difficulty); ok {
			target = s
		}
	}
	if own != nil {
		switch {
		case target == nil:
			target = own.Save()
		case own.Permanent() && own.Save() != target && !req.GameMaster:
			return EnterResult{Reason: DenyBindMismatch, Save: own.Save()}
		case own.Permanent():
			target = own.Save()
		}
	}

	if req.GameMaster {
		return EnterResult{Save: target}
	}

	if info.IsRaid() && g.cfg.RequireRaidGroup && (req.Group == nil || !req.Group.IsRaid()) {
		return EnterResult{Reason: DenyNotInRaid, Save: target}
	}

	if target != nil {
		if live, ok := g.world.FindInstance(req.MapID, target.ID()); ok {
			if md.MaxPlayers > 0 && live.PlayerCount() >= int(md.MaxPlayers) {
				return EnterResult{Reason: DenyMapFull, Save: target}
			}
			if g.cfg.ForbidCombatTransfer && live.InCombat() {
				return EnterResult{Reason: DenyZoneInCombat, Save: target}
			}
		}
	}

	if info.IsDungeon() && req.Times != nil {
		var id uint32
		if target != nil {
			id = target.ID()
		}
		if !req.Times.Allowed(id, req.Now, g.cfg.MaxPerHour) {
			return EnterResult{Reason: DenyTooManyInstances, Save: target}
		}
	}
	return EnterResult{Save: target}
}
