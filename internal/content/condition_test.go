// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package content

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/pkg/errutil"
)

type facts struct {
	level        uint8
	race, class  uint8
	quests       []uint32
	auras        []uint32
	spells       []uint32
	items        []uint32
	achievements []uint32
}

func (f facts) Level() uint8                    { return f.level }
func (f facts) Race() uint8                     { return f.race }
func (f facts) Class() uint8                    { return f.class }
func (f facts) HasRewardedQuest(id uint32) bool { return slices.Contains(f.quests, id) }
func (f facts) HasAura(id uint32) bool          { return slices.Contains(f.auras, id) }
func (f facts) HasSpell(id uint32) bool         { return slices.Contains(f.spells, id) }
func (f facts) HasItem(id uint32) bool          { return slices.Contains(f.items, id) }
func (f facts) HasAchievement(id uint32) bool   { return slices.Contains(f.achievements, id) }

func TestCondition_Eval(t *testing.T) {
	tests := []struct {
		src   string
		facts facts
		want  bool
	}{
		{"level >= 30", facts{level: 30}, true},
		{"level >= 30", facts{level: 29}, false},
		{"level < 10", facts{level: 9}, true},
		{"class == 8", facts{class: 8}, true},
		{"race != 2", facts{race: 2}, false},
		{"quest(1234)", facts{quests: []uint32{1234}}, true},
		{"!aura(9)", facts{auras: []uint32{9}}, false},
		{"!aura(9)", facts{}, true},
		{"level >= 30 && quest(1234) && !aura(9)", facts{level: 40, quests: []uint32{1234}}, true},
		{"level >= 30 && quest(1234) && !aura(9)", facts{level: 40, quests: []uint32{1234}, auras: []uint32{9}}, false},
		{"item(1) || item(2)", facts{items: []uint32{2}}, true},
		{"item(1) || item(2)", facts{}, false},
		{"spell(133) && (achievement(7) || level > 59)", facts{spells: []uint32{133}, level: 60}, true},
		{"!(level >= 10 || quest(1))", facts{level: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			c, err := ParseCondition(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Eval(tt.facts))
			assert.Equal(t, tt.src, c.String())
		})
	}
}

func TestParseCondition_Rejects(t *testing.T) {
	tests := []struct {
		src  string
		code string
	}{
		{"level >=", "CONDITION_PARSE_FAILED"},
		{"quest(", "CONDITION_PARSE_FAILED"},
		{"&& level > 1", "CONDITION_PARSE_FAILED"},
		{"level(3)", "CONDITION_INVALID"},
		{"quest > 3", "CONDITION_INVALID"},
		{"gold > 100", "CONDITION_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseCondition(tt.src)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}
