// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Skill is one skill line's progress.
type Skill struct {
	entity.Tracked
	Value uint16
	Max   uint16
}

type skillContent interface {
	Skill(id uint32) (content.SkillInfo, bool)
}

// Skills holds the character's skill lines.
type Skills struct {
	content skillContent
	items   *entity.Collection[uint32, *Skill]
}

func newSkills(c skillContent) *Skills {
	return &Skills{content: c, items: entity.NewCollection[uint32, *Skill]()}
}

// load restores skill lines. A row for an unknown skill, or whose value is
// outside [1, max] or whose max exceeds the skill's cap, is kept as Deleted
// so the next save removes it.
func (s *Skills) load(rows []store.SkillRow, r *repairs) {
	for _, row := range rows {
		id := uint32(row.Skill)
		sk := &Skill{Value: uint16(row.Value), Max: uint16(row.Max)}
		s.items.Load(id, sk)
		info, ok := s.content.Skill(id)
		valid := ok && row.Value > 0 && row.Max > 0 && row.Value <= row.Max && row.Max <= int32(info.MaxValue)
		if !valid {
			s.items.Remove(id, entity.Deleted)
			r.fixed("skill", "skill", row.Skill)
		}
	}
}

// Value returns the current and maximum value of a skill line.
func (s *Skills) Value(id uint32) (value, limit uint16, ok bool) {
	sk, ok := s.items.Get(id)
	if !ok {
		return 0, 0, false
	}
	return sk.Value, sk.Max, true
}

// Has reports whether the skill line is known.
func (s *Skills) Has(id uint32) bool { return s.items.Has(id) }

// Set learns or updates a skill line. Values are clamped to the skill's
// cap. It reports false for unknown skills or a zero value.
func (s *Skills) Set(id uint32, value, limit uint16) bool {
	info, ok := s.content.Skill(id)
	if !ok || value == 0 {
		return false
	}
	if info.MaxValue > 0 && limit > info.MaxValue {
		limit = info.MaxValue
	}
	if value > limit {
		value = limit
	}
	if sk, ok := s.items.Get(id); ok {
		if sk.Value != value || sk.Max != limit {
			sk.Value, sk.Max = value, limit
			sk.MarkChanged()
		}
		return true
	}
	s.items.Put(id, &Skill{Value: value, Max: limit})
	return true
}

// Remove unlearns a skill line.
func (s *Skills) Remove(id uint32) bool { return s.items.Remove(id, entity.Deleted) }

// Dirty returns the number of skill lines needing a statement.
func (s *Skills) Dirty() int { return s.items.Dirty() }

func (s *Skills) emit(tx *store.Transaction, guid int64) {
	s.items.Flush(func(id uint32, sk *Skill) {
		switch sk.State() {
		case entity.New:
			tx.Append(store.CharInsSkill, guid, int32(id), int32(sk.Value), int32(sk.Max))
		case entity.Changed:
			tx.Append(store.CharUpdSkill, guid, int32(id), int32(sk.Value), int32(sk.Max))
		default:
			tx.Append(store.CharDelSkill, guid, int32(id))
		}
	})
}

func (s *Skills) committed() { s.items.Commit() }
