// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package entity tracks the persistence lifecycle of character sub-entities.
//
// Every row-backed object owned by a character (items, skills, spells,
// auras, quest status, binds, ...) embeds a Tracked value. The save pipeline
// reads the state to decide which statement, if any, the entity needs, and
// resets it once the statements have been committed.
package entity

import "fmt"

// State is the lifecycle state of a persistable entity.
type State uint8

// Lifecycle states.
const (
	// Unchanged entities match their durable row and need no statement.
	Unchanged State = iota
	// New entities have no durable row yet.
	New
	// Changed entities have a durable row that is out of date.
	Changed
	// Removed entities left this owner's collection but remain live
	// elsewhere (an item being mailed or traded).
	Removed
	// Deleted entities are gone for good; their row must be deleted.
	Deleted
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case New:
		return "new"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Dirty reports whether the state requires a statement on save.
func (s State) Dirty() bool {
	return s != Unchanged
}

// Gone reports whether the entity must leave the collection after save.
func (s State) Gone() bool {
	return s == Removed || s == Deleted
}

// Tracked carries the lifecycle state of one entity. The zero value is
// Unchanged, which is what a freshly loaded row should be.
type Tracked struct {
	state State
}

// State returns the current lifecycle state.
func (t *Tracked) State() State {
	return t.state
}

// MarkNew flags the entity as having no durable row.
func (t *Tracked) MarkNew() {
	t.state = New
}

// MarkChanged promotes Unchanged to Changed. New and Changed are left as-is.
// Mutating a removed or deleted entity is a caller bug and panics.
func (t *Tracked) MarkChanged() {
	switch t.state {
	case Unchanged:
		t.state = Changed
	case New, Changed:
	default:
		panic(fmt.Sprintf("entity: mutation of %s entity", t.state))
	}
}

// MarkRemoved flags the entity as moved out of its owner's collection.
func (t *Tracked) MarkRemoved() {
	t.state = Removed
}

// MarkDeleted flags the entity's row for deletion.
func (t *Tracked) MarkDeleted() {
	t.state = Deleted
}

// MarkSaved resets the state after a successful commit.
func (t *Tracked) MarkSaved() {
	t.state = Unchanged
}

// Entity is implemented by any value embedding Tracked.
type Entity interface {
	State() State
	MarkNew()
	MarkChanged()
	MarkRemoved()
	MarkDeleted()
	MarkSaved()
}

var _ Entity = (*Tracked)(nil)
