// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"slices"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Character slot layout. Slots in bag 0 belong to the character itself;
// any other bag value is the GUID of an equipped container.
const (
	EquipmentSlotStart int16 = 0
	EquipmentSlotEnd   int16 = 19
	BagSlotStart       int16 = 19
	BagSlotEnd         int16 = 23
	BackpackSlotStart  int16 = 23
	BackpackSlotEnd    int16 = 39
)

// Item is an item owned by the character.
type Item struct {
	entity.Tracked
	GUID       int64
	Entry      uint32
	Creator    int64
	Count      uint32
	Charges    []int32
	Flags      uint32
	Durability uint32
	PlayTime   uint32
	Appearance uint32
	// Expires is zero for items without a lifetime.
	Expires time.Time
	// RefundDeadline is zero once the item can no longer be refunded.
	RefundDeadline time.Time
	Bag            int64
	Slot           int16
}

// Equipped reports whether the item sits in an equipment slot.
func (it *Item) Equipped() bool {
	return it.Bag == 0 && it.Slot >= EquipmentSlotStart && it.Slot < EquipmentSlotEnd
}

func (it *Item) expiresUnix() int64 { return zeroOrUnix(it.Expires) }

type slotKey struct {
	bag  int64
	slot int16
}

type itemContent interface {
	Item(id uint32) (content.ItemTemplate, bool)
}

// Inventory holds the character's items keyed by item GUID, plus a slot
// index over the live ones.
type Inventory struct {
	content itemContent
	items   *entity.Collection[int64, *Item]
	slots   map[slotKey]int64
}

func newInventory(c itemContent) *Inventory {
	return &Inventory{
		content: c,
		items:   entity.NewCollection[int64, *Item](),
		slots:   make(map[slotKey]int64),
	}
}

// load restores items. Items in the character's own slots are placed
// before items in containers so that container capacity is known. Items
// without a template or whose lifetime ran out are deleted; items in an
// impossible or taken slot are moved to a free slot, or deleted when none
// is left.
func (inv *Inventory) load(rows []store.ItemRow, now time.Time, r *repairs) {
	ordered := slices.Clone(rows)
	slices.SortStableFunc(ordered, func(a, b store.ItemRow) int {
		switch {
		case a.Bag == 0 && b.Bag != 0:
			return -1
		case a.Bag != 0 && b.Bag == 0:
			return 1
		}
		return 0
	})
	for _, row := range ordered {
		if _, ok := inv.content.Item(uint32(row.Entry)); !ok {
			r.delete("item", store.CharDelItem, row.Guid)
			continue
		}
		it := &Item{
			GUID:       row.Guid,
			Entry:      uint32(row.Entry),
			Creator:    row.Creator,
			Count:      uint32(row.Count),
			Charges:    slices.Clone(row.Charges),
			Flags:      uint32(row.Flags),
			Durability: uint32(row.Durability),
			PlayTime:   uint32(row.PlayTime),
			Appearance: uint32(row.TransmogAppearance),
			Bag:        row.Bag,
			Slot:       row.Slot,
		}
		if row.ExpiresAt > 0 {
			it.Expires = time.Unix(row.ExpiresAt, 0).UTC()
			if !it.Expires.After(now) {
				r.delete("item", store.CharDelItem, row.Guid)
				continue
			}
		}
		inv.items.Load(it.GUID, it)
		if row.RefundDeadline != 0 {
			it.RefundDeadline = time.Unix(row.RefundDeadline, 0).UTC()
			if !it.RefundDeadline.After(now) {
				it.RefundDeadline = time.Time{}
				it.MarkChanged()
			}
		}
		if inv.validSlot(it.Bag, it.Slot) && !inv.taken(it.Bag, it.Slot) {
			inv.slots[slotKey{it.Bag, it.Slot}] = it.GUID
			continue
		}
		if bag, slot, ok := inv.FirstFreeSlot(); ok {
			it.Bag, it.Slot = bag, slot
			it.MarkChanged()
			inv.slots[slotKey{bag, slot}] = it.GUID
			r.fixed("item", "item", row.Guid)
			continue
		}
		inv.items.Remove(it.GUID, entity.Deleted)
		r.fixed("item", "item", row.Guid)
	}
}

// validSlot reports whether (bag, slot) names a real slot: one of the
// character's own, or a slot inside an equipped container.
func (inv *Inventory) validSlot(bag int64, slot int16) bool {
	if bag == 0 {
		return slot >= EquipmentSlotStart && slot < BackpackSlotEnd
	}
	container, ok := inv.items.Get(bag)
	if !ok || container.Bag != 0 || container.Slot < BagSlotStart || container.Slot >= BagSlotEnd {
		return false
	}
	tmpl, ok := inv.content.Item(container.Entry)
	return ok && slot >= 0 && slot < int16(tmpl.ContainerSlots)
}

func (inv *Inventory) taken(bag int64, slot int16) bool {
	_, ok := inv.slots[slotKey{bag, slot}]
	return ok
}

// FirstFreeSlot returns the first empty backpack slot, then the first
// empty slot of an equipped container.
func (inv *Inventory) FirstFreeSlot() (bag int64, slot int16, ok bool) {
	for s := BackpackSlotStart; s < BackpackSlotEnd; s++ {
		if !inv.taken(0, s) {
			return 0, s, true
		}
	}
	for b := BagSlotStart; b < BagSlotEnd; b++ {
		guid, ok := inv.slots[slotKey{0, b}]
		if !ok {
			continue
		}
		container, _ := inv.items.Get(guid)
		tmpl, ok := inv.content.Item(container.Entry)
		if !ok {
			continue
		}
		for s := int16(0); s < int16(tmpl.ContainerSlots); s++ {
			if !inv.taken(guid, s) {
				return guid, s, true
			}
		}
	}
	return 0, 0, false
}

// Get returns a live item by GUID.
func (inv *Inventory) Get(guid int64) (*Item, bool) { return inv.items.Get(guid) }

// At returns the item in (bag, slot).
func (inv *Inventory) At(bag int64, slot int16) (*Item, bool) {
	guid, ok := inv.slots[slotKey{bag, slot}]
	if !ok {
		return nil, false
	}
	return inv.items.Get(guid)
}

// Add stores a new item in (bag, slot). The item's lifetime, if its
// template has one, starts at now.
func (inv *Inventory) Add(it *Item, bag int64, slot int16, now time.Time) bool {
	tmpl, ok := inv.content.Item(it.Entry)
	if !ok || inv.items.Has(it.GUID) || !inv.validSlot(bag, slot) || inv.taken(bag, slot) {
		return false
	}
	if tmpl.DurationSeconds > 0 {
		it.Expires = now.Add(time.Duration(tmpl.DurationSeconds) * time.Second)
	}
	if it.Count == 0 {
		it.Count = 1
	}
	it.Bag, it.Slot = bag, slot
	inv.items.Put(it.GUID, it)
	inv.slots[slotKey{bag, slot}] = it.GUID
	return true
}

// Move places a live item in an empty slot.
func (inv *Inventory) Move(guid, bag int64, slot int16) bool {
	it, ok := inv.items.Get(guid)
	if !ok || guid == bag || !inv.validSlot(bag, slot) || inv.taken(bag, slot) {
		return false
	}
	// A container with items in it may only move between bag slots.
	if inv.holdsItems(guid) && (bag != 0 || slot < BagSlotStart || slot >= BagSlotEnd) {
		return false
	}
	delete(inv.slots, slotKey{it.Bag, it.Slot})
	it.Bag, it.Slot = bag, slot
	it.MarkChanged()
	inv.slots[slotKey{bag, slot}] = guid
	return true
}

func (inv *Inventory) holdsItems(container int64) bool {
	for k := range inv.slots {
		if k.bag == container {
			return true
		}
	}
	return false
}

// Destroy deletes an item. A container must be empty first.
func (inv *Inventory) Destroy(guid int64) bool { return inv.take(guid, entity.Deleted) }

// Detach takes an item out of the inventory without deleting it, as when
// it is mailed or traded. Only its slot row is removed.
func (inv *Inventory) Detach(guid int64) (*Item, bool) {
	it, ok := inv.items.Get(guid)
	if !ok || !inv.take(guid, entity.Removed) {
		return nil, false
	}
	return it, true
}

func (inv *Inventory) take(guid int64, how entity.State) bool {
	it, ok := inv.items.Get(guid)
	if !ok || inv.holdsItems(guid) {
		return false
	}
	delete(inv.slots, slotKey{it.Bag, it.Slot})
	return inv.items.Remove(guid, how)
}

// Expire deletes items whose lifetime ran out by now and returns how many
// were removed.
func (inv *Inventory) Expire(now time.Time) int {
	var expired []int64
	inv.items.Each(func(guid int64, it *Item) bool {
		if !it.Expires.IsZero() && !it.Expires.After(now) && !inv.holdsItems(guid) {
			expired = append(expired, guid)
		}
		return true
	})
	for _, guid := range expired {
		inv.Destroy(guid)
	}
	return len(expired)
}

// HasEntry reports whether any live item has the given template.
func (inv *Inventory) HasEntry(entry uint32) bool {
	found := false
	inv.items.Each(func(_ int64, it *Item) bool {
		found = it.Entry == entry
		return !found
	})
	return found
}

// EachEquipped visits equipped items in slot order until fn returns false.
func (inv *Inventory) EachEquipped(fn func(*Item) bool) {
	for s := EquipmentSlotStart; s < EquipmentSlotEnd; s++ {
		if it, ok := inv.At(0, s); ok && !fn(it) {
			return
		}
	}
}

// Each visits live items in GUID order until fn returns false.
func (inv *Inventory) Each(fn func(*Item) bool) {
	inv.items.Each(func(_ int64, it *Item) bool { return fn(it) })
}

// Len returns the number of live items.
func (inv *Inventory) Len() int { return inv.items.Len() }

// Dirty returns the number of items needing a statement.
func (inv *Inventory) Dirty() int { return inv.items.Dirty() }

func (inv *Inventory) emit(tx *store.Transaction, owner int64) {
	inv.items.Flush(func(guid int64, it *Item) {
		switch it.State() {
		case entity.Removed:
			tx.Append(store.CharDelInventoryItem, guid)
		case entity.Deleted:
			tx.Append(store.CharDelItem, guid)
		default:
			tx.Append(store.CharRepItem, guid, int32(it.Entry), owner, it.Creator, int32(it.Count),
				it.expiresUnix(), int32s(it.Charges), int32(it.Flags), int32(it.Durability),
				int32(it.PlayTime), int32(it.Appearance), zeroOrUnix(it.RefundDeadline), it.Bag, it.Slot)
		}
	})
}

func (inv *Inventory) committed() { inv.items.Commit() }
