// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import "github.com/CypherCore/CypherCore-sub002/internal/content"

// Difficulties is the difficulty an owner selected for each kind of
// instanced map. Characters carry their own; a group's settings override
// them while the character is grouped.
type Difficulties struct {
	Dungeon    content.Difficulty
	Raid       content.Difficulty
	LegacyRaid content.Difficulty
}

// DefaultDifficulties is the selection of a new character or group.
var DefaultDifficulties = Difficulties{
	Dungeon:    content.DifficultyNormal,
	Raid:       content.DifficultyNormalRaid,
	LegacyRaid: content.Difficulty10N,
}

// For returns the difficulty used to enter m. Raids that do not offer the
// selected raid difficulty fall back to the legacy raid selection.
// Non-instanced maps have no difficulty.
func (d Difficulties) For(c Content, m content.MapInfo) content.Difficulty {
	switch {
	case !m.IsInstance():
		return content.DifficultyNone
	case m.IsBattleground():
		return content.DifficultyNone
	case !m.IsRaid():
		return d.Dungeon
	}
	if _, ok := c.MapDifficulty(m.ID, d.Raid); ok {
		return d.Raid
	}
	return d.LegacyRaid
}
