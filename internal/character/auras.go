// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"fmt"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Aura is an aura on the character that survives logout.
type Aura struct {
	entity.Tracked
	Caster          int64
	Item            int64
	Spell           uint32
	EffectMask      uint32
	RecalculateMask uint32
	Stacks          uint8
	Charges         uint8
	// MaxDuration is negative for auras that never expire.
	MaxDuration time.Duration
	// Expires is zero for auras that never expire.
	Expires time.Time
	Amounts []int32
}

// Permanent reports whether the aura never expires.
func (a *Aura) Permanent() bool { return a.Expires.IsZero() }

// Remaining returns the time left at now.
func (a *Aura) Remaining(now time.Time) time.Duration {
	if a.Permanent() {
		return -1
	}
	if d := a.Expires.Sub(now); d > 0 {
		return d
	}
	return 0
}

// expiresMillis is the stored expiry in unix milliseconds, zero for a
// permanent aura.
func (a *Aura) expiresMillis() int64 {
	if a.Permanent() {
		return 0
	}
	return a.Expires.UnixMilli()
}

// auraKey orders auras by caster, spell and effect mask.
func auraKey(caster int64, spell, mask uint32) string {
	return fmt.Sprintf("%016x%08x%08x", uint64(caster), spell, mask)
}

type auraContent interface {
	Spell(id uint32) (content.SpellInfo, bool)
}

// Auras holds the persisted auras.
type Auras struct {
	content auraContent
	items   *entity.Collection[string, *Aura]
}

func newAuras(c auraContent) *Auras {
	return &Auras{content: c, items: entity.NewCollection[string, *Aura]()}
}

// load restores auras. Auras of unknown spells and auras that ran out
// while offline are deleted through the repair transaction.
func (a *Auras) load(guid int64, rows []store.AuraRow, now time.Time, r *repairs) {
	for _, row := range rows {
		spell := uint32(row.Spell)
		del := func() {
			r.delete("aura", store.CharDelAura, guid, row.CasterGuid, row.Spell, row.EffectMask)
		}
		if _, ok := a.content.Spell(spell); !ok {
			del()
			continue
		}
		aura := &Aura{
			Caster:          row.CasterGuid,
			Item:            row.ItemGuid,
			Spell:           spell,
			EffectMask:      uint32(row.EffectMask),
			RecalculateMask: uint32(row.RecalculateMask),
			Stacks:          uint8(row.StackCount),
			Charges:         uint8(row.RemainCharges),
			MaxDuration:     time.Duration(row.MaxDuration) * time.Millisecond,
			Amounts:         row.Amounts,
		}
		if row.ExpiresAt > 0 {
			aura.Expires = time.UnixMilli(row.ExpiresAt).UTC()
			if !aura.Expires.After(now) {
				del()
				continue
			}
		}
		a.items.Load(auraKey(aura.Caster, aura.Spell, aura.EffectMask), aura)
	}
}

// Apply adds an aura or replaces the one with the same caster, spell and
// effect mask. A duration below zero never expires.
func (a *Auras) Apply(aura *Aura, duration time.Duration, now time.Time) bool {
	if _, ok := a.content.Spell(aura.Spell); !ok {
		return false
	}
	aura.MaxDuration = duration
	aura.Expires = time.Time{}
	if duration >= 0 {
		aura.Expires = now.Add(duration)
	}
	if aura.Stacks == 0 {
		aura.Stacks = 1
	}
	a.items.Put(auraKey(aura.Caster, aura.Spell, aura.EffectMask), aura)
	return true
}

// Get returns the aura with the given key.
func (a *Auras) Get(caster int64, spell, mask uint32) (*Aura, bool) {
	return a.items.Get(auraKey(caster, spell, mask))
}

// Remove deletes one aura.
func (a *Auras) Remove(caster int64, spell, mask uint32) bool {
	return a.items.Remove(auraKey(caster, spell, mask), entity.Deleted)
}

// RemoveSpell deletes every aura of spell and returns how many were
// removed.
func (a *Auras) RemoveSpell(spell uint32) int {
	var keys []string
	a.items.Each(func(k string, aura *Aura) bool {
		if aura.Spell == spell {
			keys = append(keys, k)
		}
		return true
	})
	for _, k := range keys {
		a.items.Remove(k, entity.Deleted)
	}
	return len(keys)
}

// Expire deletes auras that ran out by now and returns how many were
// removed.
func (a *Auras) Expire(now time.Time) int {
	var keys []string
	a.items.Each(func(k string, aura *Aura) bool {
		if !aura.Permanent() && !aura.Expires.After(now) {
			keys = append(keys, k)
		}
		return true
	})
	for _, k := range keys {
		a.items.Remove(k, entity.Deleted)
	}
	return len(keys)
}

// HasSpell reports whether an aura of spell is active.
func (a *Auras) HasSpell(spell uint32) bool {
	found := false
	a.items.Each(func(_ string, aura *Aura) bool {
		found = aura.Spell == spell
		return !found
	})
	return found
}

// Each visits active auras in key order until fn returns false.
func (a *Auras) Each(fn func(*Aura) bool) {
	a.items.Each(func(_ string, aura *Aura) bool { return fn(aura) })
}

// Len returns the number of active auras.
func (a *Auras) Len() int { return a.items.Len() }

// Dirty returns the number of auras needing a statement.
func (a *Auras) Dirty() int { return a.items.Dirty() }

func (a *Auras) emit(tx *store.Transaction, guid int64) {
	a.items.Flush(func(_ string, aura *Aura) {
		caster, spell, mask := aura.Caster, int32(aura.Spell), int32(aura.EffectMask)
		maxDur := int32(aura.MaxDuration / time.Millisecond)
		if aura.MaxDuration < 0 {
			maxDur = -1
		}
		switch aura.State() {
		case entity.New:
			tx.Append(store.CharInsAura, guid, caster, aura.Item, spell, mask, int32(aura.RecalculateMask),
				int16(aura.Stacks), maxDur, aura.expiresMillis(), int16(aura.Charges), int32s(aura.Amounts))
		case entity.Changed:
			tx.Append(store.CharUpdAura, guid, caster, spell, mask, aura.Item, int32(aura.RecalculateMask),
				int16(aura.Stacks), maxDur, aura.expiresMillis(), int16(aura.Charges), int32s(aura.Amounts))
		default:
			tx.Append(store.CharDelAura, guid, caster, spell, mask)
		}
	})
}

func (a *Auras) committed() { a.items.Commit() }
