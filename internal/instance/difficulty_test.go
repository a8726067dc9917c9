// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/instance"
)

func TestDifficulties_For(t *testing.T) {
	c := newFakeContent()
	d := instance.Difficulties{
		Dungeon:    content.DifficultyHeroic,
		Raid:       content.DifficultyHeroicRaid,
		LegacyRaid: content.Difficulty10HC,
	}

	city, _ := c.Map(mapCity)
	dungeon, _ := c.Map(mapDungeon)
	raid, _ := c.Map(mapRaid)
	arena, _ := c.Map(mapArena)

	assert.Equal(t, content.DifficultyNone, d.For(c, city))
	assert.Equal(t, content.DifficultyNone, d.For(c, arena))
	assert.Equal(t, content.DifficultyHeroic, d.For(c, dungeon))
	assert.Equal(t, content.Difficulty10HC, d.For(c, raid), "raid without modern difficulties uses the legacy selection")

	c.addMap(mapRaid, content.MapRaid, content.MapDifficulty{Difficulty: content.DifficultyHeroicRaid, MaxPlayers: 30})
	raid, _ = c.Map(mapRaid)
	assert.Equal(t, content.DifficultyHeroicRaid, d.For(c, raid))
}
