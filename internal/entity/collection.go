// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package entity

import (
	"cmp"
	"maps"
	"slices"
)

// Collection is a keyed set of tracked entities owned by one character.
// Removed and Deleted entries stay in the map until Commit so the save
// pipeline can emit their delete statements; lookups never return them.
type Collection[K cmp.Ordered, V Entity] struct {
	items map[K]V
}

// NewCollection creates an empty collection.
func NewCollection[K cmp.Ordered, V Entity]() *Collection[K, V] {
	return &Collection[K, V]{items: make(map[K]V)}
}

// Load records an entity read from storage. Its state is left untouched,
// which for a freshly scanned row is Unchanged.
func (c *Collection[K, V]) Load(key K, v V) {
	c.items[key] = v
}

// Put inserts or replaces the entity at key. A key with no durable row
// yields a New entity. A key whose previous entity is durable (including one
// awaiting deletion) yields Changed, so the existing row is updated rather
// than duplicated.
func (c *Collection[K, V]) Put(key K, v V) {
	prev, ok := c.items[key]
	switch {
	case !ok, prev.State() == New:
		v.MarkNew()
	default:
		v.MarkSaved()
		v.MarkChanged()
	}
	c.items[key] = v
}

// Get returns the live entity at key.
func (c *Collection[K, V]) Get(key K) (V, bool) {
	v, ok := c.items[key]
	if !ok || v.State().Gone() {
		var zero V
		return zero, false
	}
	return v, true
}

// Has reports whether a live entity exists at key.
func (c *Collection[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Remove takes the entity at key out of the collection with the given
// removal state (Removed or Deleted). A New entity was never durable and is
// dropped immediately. It reports whether a live entity was found.
func (c *Collection[K, V]) Remove(key K, how State) bool {
	v, ok := c.items[key]
	if !ok || v.State().Gone() {
		return false
	}
	if v.State() == New {
		delete(c.items, key)
		return true
	}
	switch how {
	case Removed:
		v.MarkRemoved()
	default:
		v.MarkDeleted()
	}
	return true
}

// Revive returns an entity pending removal at key to Unchanged, cancelling
// its delete. Only valid when the entity's row still matches it. It reports
// whether such an entity existed.
func (c *Collection[K, V]) Revive(key K) bool {
	v, ok := c.items[key]
	if !ok || !v.State().Gone() {
		return false
	}
	v.MarkSaved()
	return true
}

// Len returns the number of live entities.
func (c *Collection[K, V]) Len() int {
	n := 0
	for _, v := range c.items {
		if !v.State().Gone() {
			n++
		}
	}
	return n
}

// Each visits live entities in key order until fn returns false.
func (c *Collection[K, V]) Each(fn func(K, V) bool) {
	for _, k := range slices.Sorted(maps.Keys(c.items)) {
		v := c.items[k]
		if v.State().Gone() {
			continue
		}
		if !fn(k, v) {
			return
		}
	}
}

// Dirty returns the number of entities that need a statement.
func (c *Collection[K, V]) Dirty() int {
	n := 0
	for _, v := range c.items {
		if v.State().Dirty() {
			n++
		}
	}
	return n
}

// Flush visits every dirty entity in key order. Unchanged entities are
// skipped, so the work done is proportional to the dirty count.
func (c *Collection[K, V]) Flush(fn func(K, V)) {
	keys := make([]K, 0, len(c.items))
	for k, v := range c.items {
		if v.State().Dirty() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		fn(k, c.items[k])
	}
}

// Commit acknowledges a successful save: gone entities are dropped and
// every other entity returns to Unchanged.
func (c *Collection[K, V]) Commit() {
	for k, v := range c.items {
		switch {
		case v.State().Gone():
			delete(c.items, k)
		case v.State().Dirty():
			v.MarkSaved()
		}
	}
}

// Forget drops the entry at key without recording a state change. Used when
// the row is handled outside the normal save flow.
func (c *Collection[K, V]) Forget(key K) {
	delete(c.items, key)
}
