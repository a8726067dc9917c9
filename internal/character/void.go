// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// MaxVoidStorageSlots is the capacity of void storage.
const MaxVoidStorageSlots = 160

// VoidItem is an item deposited in void storage.
type VoidItem struct {
	entity.Tracked
	Entry       uint32
	Slot        uint8
	Creator     int64
	RandomBonus uint32
}

// VoidStorage holds deposited items keyed by item id, with a slot index.
// Rows are deleted by item id, so keying by id keeps a replaced item's
// row from being left behind.
type VoidStorage struct {
	content itemContent
	items   *entity.Collection[int64, *VoidItem]
	slots   map[uint8]int64
}

func newVoidStorage(c itemContent) *VoidStorage {
	return &VoidStorage{
		content: c,
		items:   entity.NewCollection[int64, *VoidItem](),
		slots:   make(map[uint8]int64),
	}
}

func (v *VoidStorage) load(rows []store.VoidItemRow, r *repairs) {
	for _, row := range rows {
		if _, ok := v.content.Item(uint32(row.Entry)); !ok {
			r.delete("void_item", store.CharDelVoidItem, row.ItemID)
			continue
		}
		it := &VoidItem{
			Entry:       uint32(row.Entry),
			Slot:        uint8(row.Slot),
			Creator:     row.Creator,
			RandomBonus: uint32(row.RandomBonus),
		}
		v.items.Load(row.ItemID, it)
		if row.Slot >= 0 && row.Slot < MaxVoidStorageSlots {
			if _, taken := v.slots[it.Slot]; !taken {
				v.slots[it.Slot] = row.ItemID
				continue
			}
		}
		slot, ok := v.FreeSlot()
		if !ok {
			v.items.Remove(row.ItemID, entity.Deleted)
			r.fixed("void_item", "item", row.ItemID)
			continue
		}
		it.Slot = slot
		it.MarkChanged()
		v.slots[slot] = row.ItemID
		r.fixed("void_item", "item", row.ItemID)
	}
}

// FreeSlot returns the first empty slot.
func (v *VoidStorage) FreeSlot() (uint8, bool) {
	for s := 0; s < MaxVoidStorageSlots; s++ {
		if _, ok := v.slots[uint8(s)]; !ok {
			return uint8(s), true
		}
	}
	return 0, false
}

// At returns the item id and item in slot.
func (v *VoidStorage) At(slot uint8) (int64, *VoidItem, bool) {
	id, ok := v.slots[slot]
	if !ok {
		return 0, nil, false
	}
	it, ok := v.items.Get(id)
	return id, it, ok
}

// Deposit stores an item in the first free slot.
func (v *VoidStorage) Deposit(id int64, it *VoidItem) bool {
	if _, ok := v.content.Item(it.Entry); !ok || v.items.Has(id) {
		return false
	}
	slot, ok := v.FreeSlot()
	if !ok {
		return false
	}
	it.Slot = slot
	v.items.Put(id, it)
	v.slots[slot] = id
	return true
}

// Withdraw removes an item from void storage.
func (v *VoidStorage) Withdraw(id int64) (*VoidItem, bool) {
	it, ok := v.items.Get(id)
	if !ok {
		return nil, false
	}
	delete(v.slots, it.Slot)
	v.items.Remove(id, entity.Deleted)
	return it, true
}

// Swap moves an item to slot, exchanging places with any item already
// there.
func (v *VoidStorage) Swap(id int64, slot uint8) bool {
	it, ok := v.items.Get(id)
	if !ok || slot >= MaxVoidStorageSlots {
		return false
	}
	if other, taken := v.slots[slot]; taken && other != id {
		o, _ := v.items.Get(other)
		o.Slot = it.Slot
		o.MarkChanged()
		v.slots[it.Slot] = other
	} else {
		delete(v.slots, it.Slot)
	}
	it.Slot = slot
	it.MarkChanged()
	v.slots[slot] = id
	return true
}

// Len returns the number of deposited items.
func (v *VoidStorage) Len() int { return v.items.Len() }

// Dirty returns the number of items needing a statement.
func (v *VoidStorage) Dirty() int { return v.items.Dirty() }

func (v *VoidStorage) emit(tx *store.Transaction, owner int64) {
	v.items.Flush(func(id int64, it *VoidItem) {
		if it.State().Gone() {
			tx.Append(store.CharDelVoidItem, id)
			return
		}
		tx.Append(store.CharRepVoidItem, id, owner, int32(it.Entry), int16(it.Slot), it.Creator,
			int32(it.RandomBonus))
	})
}

func (v *VoidStorage) committed() { v.items.Commit() }
