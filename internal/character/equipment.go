// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// MaxEquipmentSets is the number of saved equipment sets.
const MaxEquipmentSets = 20

// EquipmentSet is a saved outfit: one item GUID per equipment slot, zero
// for slots the set leaves alone.
type EquipmentSet struct {
	entity.Tracked
	Index      uint8
	Name       string
	Icon       string
	IgnoreMask uint32
	Items      [EquipmentSlotEnd]int64
}

// EquipmentSets holds saved equipment sets keyed by set GUID.
type EquipmentSets struct {
	items *entity.Collection[int64, *EquipmentSet]
}

func newEquipmentSets() *EquipmentSets {
	return &EquipmentSets{items: entity.NewCollection[int64, *EquipmentSet]()}
}

// load restores sets. Slots naming items the character no longer has are
// cleared and the set is saved back.
func (e *EquipmentSets) load(rows []store.EquipmentSetRow, inv *Inventory, r *repairs) {
	for _, row := range rows {
		if row.SetIndex < 0 || row.SetIndex >= MaxEquipmentSets {
			r.delete("equipment_set", store.CharDelEquipmentSet, row.SetGuid)
			continue
		}
		set := &EquipmentSet{
			Index:      uint8(row.SetIndex),
			Name:       row.Name,
			Icon:       row.IconName,
			IgnoreMask: uint32(row.IgnoreMask),
		}
		e.items.Load(row.SetGuid, set)
		stale := false
		for i, guid := range row.Items {
			if i >= len(set.Items) {
				break
			}
			if guid != 0 && !inv.items.Has(guid) {
				stale = true
				continue
			}
			set.Items[i] = guid
		}
		if stale {
			set.MarkChanged()
			r.fixed("equipment_set", "set", row.SetGuid)
		}
	}
}

// Get returns a set by GUID.
func (e *EquipmentSets) Get(guid int64) (*EquipmentSet, bool) { return e.items.Get(guid) }

// Save stores a set, replacing any set with the same GUID.
func (e *EquipmentSets) Save(guid int64, set *EquipmentSet) bool {
	if set.Index >= MaxEquipmentSets {
		return false
	}
	e.items.Put(guid, set)
	return true
}

// Delete removes a set.
func (e *EquipmentSets) Delete(guid int64) bool { return e.items.Remove(guid, entity.Deleted) }

// Len returns the number of sets.
func (e *EquipmentSets) Len() int { return e.items.Len() }

// Dirty returns the number of sets needing a statement.
func (e *EquipmentSets) Dirty() int { return e.items.Dirty() }

func (e *EquipmentSets) emit(tx *store.Transaction, owner int64) {
	e.items.Flush(func(guid int64, set *EquipmentSet) {
		items := make([]int64, len(set.Items))
		copy(items, set.Items[:])
		switch set.State() {
		case entity.New:
			tx.Append(store.CharInsEquipmentSet, owner, guid, int16(set.Index), set.Name, set.Icon,
				int32(set.IgnoreMask), items)
		case entity.Changed:
			tx.Append(store.CharUpdEquipmentSet, owner, guid, int16(set.Index), set.Name, set.Icon,
				int32(set.IgnoreMask), items)
		default:
			tx.Append(store.CharDelEquipmentSet, guid)
		}
	})
}

func (e *EquipmentSets) committed() { e.items.Commit() }
