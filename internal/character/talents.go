// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Talent limits.
const (
	MaxTalentGroups = 2
	MaxGlyphSlots   = 6
)

// Talent is a learned talent in one talent group.
type Talent struct {
	entity.Tracked
}

type talentContent interface {
	Talent(id uint32) (content.TalentInfo, bool)
}

// Talents holds both talent groups and their glyphs.
//
// The spells a talent grants, and the spells it replaces, are derived from
// the active group instead of being written to the spellbook, so learning,
// unlearning and switching groups all go through refresh.
type Talents struct {
	content talentContent
	class   uint8
	active  uint8
	items   *entity.Collection[uint64, *Talent]

	glyphs      [MaxTalentGroups][MaxGlyphSlots]uint32
	glyphsDirty bool

	granted    map[uint32]struct{}
	overridden map[uint32]struct{}
}

func newTalents(c talentContent) *Talents {
	return &Talents{
		content:    c,
		items:      entity.NewCollection[uint64, *Talent](),
		granted:    make(map[uint32]struct{}),
		overridden: make(map[uint32]struct{}),
	}
}

func talentKey(id uint32, grp uint8) uint64 { return uint64(grp)<<32 | uint64(id) }

func splitTalentKey(k uint64) (uint32, uint8) { return uint32(k), uint8(k >> 32) }

// load restores talents for class. Talents that are unknown, belong to
// another class or sit in a group that does not exist are deleted through
// the repair transaction.
func (t *Talents) load(guid int64, class, active uint8, rows []store.TalentRow, r *repairs) {
	t.class = class
	t.active = active
	if t.active >= MaxTalentGroups {
		t.active = 0
	}
	for _, row := range rows {
		info, ok := t.content.Talent(uint32(row.TalentID))
		if !ok || info.Class != class || row.TalentGroup < 0 || row.TalentGroup >= MaxTalentGroups {
			r.delete("talent", store.CharDelTalent, guid, row.TalentID, row.TalentGroup)
			continue
		}
		t.items.Load(talentKey(uint32(row.TalentID), uint8(row.TalentGroup)), &Talent{})
	}
	t.refresh()
}

// loadGlyphs restores glyphs. An out-of-range row marks the glyphs dirty
// so the next save rewrites them without it.
func (t *Talents) loadGlyphs(rows []store.GlyphRow, r *repairs) {
	next := make(map[int16]int)
	for _, row := range rows {
		grp := row.TalentGroup
		if grp < 0 || grp >= MaxTalentGroups || next[grp] >= MaxGlyphSlots {
			t.glyphsDirty = true
			r.fixed("glyph", "glyph", row.GlyphID)
			continue
		}
		t.glyphs[grp][next[grp]] = uint32(row.GlyphID)
		next[grp]++
	}
}

// ActiveGroup returns the active talent group.
func (t *Talents) ActiveGroup() uint8 { return t.active }

// Has reports whether talent id is learned in group grp.
func (t *Talents) Has(id uint32, grp uint8) bool { return t.items.Has(talentKey(id, grp)) }

// Learn adds a talent to group grp. Relearning a talent whose removal has
// not been saved yet just cancels the removal.
func (t *Talents) Learn(id uint32, grp uint8) bool {
	info, ok := t.content.Talent(id)
	if !ok || info.Class != t.class || grp >= MaxTalentGroups {
		return false
	}
	key := talentKey(id, grp)
	if t.items.Has(key) {
		return false
	}
	if !t.items.Revive(key) {
		t.items.Put(key, &Talent{})
	}
	t.refresh()
	return true
}

// Unlearn removes a talent from group grp.
func (t *Talents) Unlearn(id uint32, grp uint8) bool {
	if !t.items.Remove(talentKey(id, grp), entity.Removed) {
		return false
	}
	t.refresh()
	return true
}

// ResetGroup unlearns every talent of group grp and returns how many were
// removed.
func (t *Talents) ResetGroup(grp uint8) int {
	var ids []uint32
	t.items.Each(func(k uint64, _ *Talent) bool {
		if id, g := splitTalentKey(k); g == grp {
			ids = append(ids, id)
		}
		return true
	})
	for _, id := range ids {
		t.items.Remove(talentKey(id, grp), entity.Removed)
	}
	if len(ids) > 0 {
		t.refresh()
	}
	return len(ids)
}

// Activate switches the active talent group. It reports whether the group
// changed.
func (t *Talents) Activate(grp uint8) bool {
	if grp >= MaxTalentGroups || grp == t.active {
		return false
	}
	t.active = grp
	t.refresh()
	return true
}

// Grants reports whether an active talent provides spell.
func (t *Talents) Grants(spell uint32) bool {
	_, ok := t.granted[spell]
	return ok
}

// Overrides reports whether an active talent replaces spell.
func (t *Talents) Overrides(spell uint32) bool {
	_, ok := t.overridden[spell]
	return ok
}

// Glyph returns the glyph in slot of group grp.
func (t *Talents) Glyph(grp, slot uint8) uint32 {
	if grp >= MaxTalentGroups || slot >= MaxGlyphSlots {
		return 0
	}
	return t.glyphs[grp][slot]
}

// SetGlyph places a glyph (zero clears the slot).
func (t *Talents) SetGlyph(grp, slot uint8, glyph uint32) bool {
	if grp >= MaxTalentGroups || slot >= MaxGlyphSlots {
		return false
	}
	if t.glyphs[grp][slot] != glyph {
		t.glyphs[grp][slot] = glyph
		t.glyphsDirty = true
	}
	return true
}

// refresh rebuilds the spells granted and replaced by the active group.
func (t *Talents) refresh() {
	clear(t.granted)
	clear(t.overridden)
	t.items.Each(func(k uint64, _ *Talent) bool {
		id, grp := splitTalentKey(k)
		if grp != t.active {
			return true
		}
		info, ok := t.content.Talent(id)
		if !ok {
			return true
		}
		if info.Spell != 0 {
			t.granted[info.Spell] = struct{}{}
		}
		if info.OverridesSpell != 0 {
			t.overridden[info.OverridesSpell] = struct{}{}
		}
		return true
	})
}

// Dirty returns the number of talents needing a statement, plus one when
// the glyphs must be rewritten.
func (t *Talents) Dirty() int {
	n := t.items.Dirty()
	if t.glyphsDirty {
		n++
	}
	return n
}

func (t *Talents) emit(tx *store.Transaction, guid int64) {
	t.items.Flush(func(k uint64, tal *Talent) {
		id, grp := splitTalentKey(k)
		if tal.State() == entity.New {
			tx.Append(store.CharInsTalent, guid, int32(id), int16(grp))
			return
		}
		tx.Append(store.CharDelTalent, guid, int32(id), int16(grp))
	})
	if !t.glyphsDirty {
		return
	}
	tx.Append(store.CharDelGlyphs, guid)
	for grp := range t.glyphs {
		for _, g := range t.glyphs[grp] {
			if g != 0 {
				tx.Append(store.CharInsGlyph, guid, int16(grp), int32(g))
			}
		}
	}
}

func (t *Talents) committed() {
	t.items.Commit()
	t.glyphsDirty = false
}
