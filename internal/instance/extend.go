// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package instance manages dungeon and raid instance saves and the binds
// that tie characters and groups to them.
//
// A Registry owns every loaded Save and counts the owners referencing it.
// Each character and each group has a BindStore keyed by (difficulty, map).
// Saves are shared between sessions, so all reference bookkeeping goes
// through the registry lock; binds belong to exactly one owner and are only
// touched from that owner's session.
package instance

import (
	"fmt"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
)

// ExtendState is the weekly-lock sub-state of a bind.
type ExtendState uint8

// Extend states. The first three are persisted with these values.
const (
	ExtendExpired ExtendState = iota
	ExtendNormal
	ExtendExtended

	// ExtendKeep asks Bind to preserve the existing bind's state. It is
	// resolved before the bind is stored and never written.
	ExtendKeep
)

// String returns the state name.
func (s ExtendState) String() string {
	switch s {
	case ExtendExpired:
		return "expired"
	case ExtendNormal:
		return "normal"
	case ExtendExtended:
		return "extended"
	case ExtendKeep:
		return "keep"
	default:
		return fmt.Sprintf("extend(%d)", uint8(s))
	}
}

// Persisted reports whether s may be written to storage.
func (s ExtendState) Persisted() bool {
	return s <= ExtendExtended
}

// next returns the state after one weekly rollover and whether the bind
// survives it.
func (s ExtendState) next() (ExtendState, bool) {
	switch s {
	case ExtendExtended:
		return ExtendNormal, true
	case ExtendNormal:
		return ExtendExpired, true
	default:
		return ExtendExpired, false
	}
}

// ResetMethod selects which binds ResetInstances may clear.
type ResetMethod uint8

// Reset methods.
const (
	// ResetAll is the player-initiated "reset all instances". It never
	// touches raid maps or heroic binds.
	ResetAll ResetMethod = iota
	ResetChangeDifficulty
	ResetGroupJoin
	ResetGroupDisband
)

// String returns the method name.
func (m ResetMethod) String() string {
	switch m {
	case ResetAll:
		return "all"
	case ResetChangeDifficulty:
		return "change_difficulty"
	case ResetGroupJoin:
		return "group_join"
	case ResetGroupDisband:
		return "group_disband"
	default:
		return fmt.Sprintf("reset(%d)", uint8(m))
	}
}

// OwnerKind distinguishes character and group bind owners.
type OwnerKind uint8

// Owner kinds.
const (
	OwnerCharacter OwnerKind = iota
	OwnerGroup
)

// Owner identifies a bind owner.
type Owner struct {
	Kind OwnerKind
	GUID int64
}

// CharacterOwner returns the owner value for a character guid.
func CharacterOwner(guid int64) Owner { return Owner{Kind: OwnerCharacter, GUID: guid} }

// GroupOwner returns the owner value for a group guid.
func GroupOwner(guid int64) Owner { return Owner{Kind: OwnerGroup, GUID: guid} }

func (o Owner) String() string {
	if o.Kind == OwnerGroup {
		return fmt.Sprintf("group:%d", o.GUID)
	}
	return fmt.Sprintf("character:%d", o.GUID)
}

// Content is the slice of static game content the instance package reads.
type Content interface {
	Map(id uint32) (content.MapInfo, bool)
	MapDifficulty(mapID uint32, d content.Difficulty) (content.MapDifficulty, bool)
	IsHeroic(d content.Difficulty) bool
}

// World is the live map manager.
type World interface {
	FindInstance(mapID, instanceID uint32) (LiveInstance, bool)
}

// LiveInstance is an instance currently simulated by the world.
type LiveInstance interface {
	PlayerCount() int
	InCombat() bool
	// Reset asks the instance to reset itself. It returns false when it
	// refuses, typically because players are inside.
	Reset(method ResetMethod) bool
}

// NoWorld is a World with nothing loaded.
type NoWorld struct{}

// FindInstance always reports no live instance.
func (NoWorld) FindInstance(uint32, uint32) (LiveInstance, bool) { return nil, false }

// bindKey packs (difficulty, map) into one ordered collection key.
func bindKey(mapID uint32, d content.Difficulty) uint64 {
	return uint64(d)<<32 | uint64(mapID)
}

func splitKey(k uint64) (uint32, content.Difficulty) {
	return uint32(k), content.Difficulty(k >> 32)
}
