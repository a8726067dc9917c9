// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Spell is one spellbook entry.
type Spell struct {
	entity.Tracked
	Active   bool
	Disabled bool
}

type spellContent interface {
	Spell(id uint32) (content.SpellInfo, bool)
}

// Spells is the character's spellbook. Spells taught by a skill line are
// only usable while that skill is known.
type Spells struct {
	content spellContent
	skills  *Skills
	items   *entity.Collection[uint32, *Spell]
}

func newSpells(c spellContent, skills *Skills) *Spells {
	return &Spells{content: c, skills: skills, items: entity.NewCollection[uint32, *Spell]()}
}

// load restores the spellbook. Rows for spells the content no longer has
// are deleted through the repair transaction.
func (s *Spells) load(guid int64, rows []store.SpellRow, r *repairs) {
	for _, row := range rows {
		id := uint32(row.Spell)
		if _, ok := s.content.Spell(id); !ok {
			r.delete("spell", store.CharDelSpell, guid, row.Spell)
			continue
		}
		s.items.Load(id, &Spell{Active: row.Active, Disabled: row.Disabled})
	}
}

// Has reports whether the spell is learned, enabled, and not waiting on a
// missing skill line.
func (s *Spells) Has(id uint32) bool {
	sp, ok := s.items.Get(id)
	if !ok || sp.Disabled {
		return false
	}
	if info, ok := s.content.Spell(id); ok && info.SkillLine != 0 {
		return s.skills.Has(info.SkillLine)
	}
	return true
}

// Known reports whether the spell is in the spellbook at all.
func (s *Spells) Known(id uint32) bool { return s.items.Has(id) }

// Learn adds a spell to the spellbook or re-enables a disabled one. It
// reports whether anything changed.
func (s *Spells) Learn(id uint32) bool {
	if _, ok := s.content.Spell(id); !ok {
		return false
	}
	if sp, ok := s.items.Get(id); ok {
		if !sp.Disabled && sp.Active {
			return false
		}
		sp.Disabled = false
		sp.Active = true
		sp.MarkChanged()
		return true
	}
	s.items.Put(id, &Spell{Active: true})
	return true
}

// Disable keeps the spell in the spellbook but makes it unusable.
func (s *Spells) Disable(id uint32) bool {
	sp, ok := s.items.Get(id)
	if !ok || sp.Disabled {
		return false
	}
	sp.Disabled = true
	sp.MarkChanged()
	return true
}

// Unlearn removes a spell from the spellbook.
func (s *Spells) Unlearn(id uint32) bool { return s.items.Remove(id, entity.Removed) }

// Len returns the number of spellbook entries.
func (s *Spells) Len() int { return s.items.Len() }

// Dirty returns the number of entries needing a statement.
func (s *Spells) Dirty() int { return s.items.Dirty() }

func (s *Spells) emit(tx *store.Transaction, guid int64) {
	s.items.Flush(func(id uint32, sp *Spell) {
		switch sp.State() {
		case entity.New:
			tx.Append(store.CharInsSpell, guid, int32(id), sp.Active, sp.Disabled)
		case entity.Changed:
			tx.Append(store.CharUpdSpell, guid, int32(id), sp.Active, sp.Disabled)
		default:
			tx.Append(store.CharDelSpell, guid, int32(id))
		}
	})
}

func (s *Spells) committed() { s.items.Commit() }
