// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import (
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// MaxActionButtons is the number of action bar buttons per talent group.
const MaxActionButtons = 180

// ActionType says what an action button triggers.
type ActionType uint8

// Action types.
const (
	ActionSpell ActionType = 0
	ActionMacro ActionType = 64
	ActionItem  ActionType = 128
)

// ActionButton is one action bar button.
type ActionButton struct {
	entity.Tracked
	Action uint64
	Type   ActionType
}

func actionKey(spec, button uint8) uint16 { return uint16(spec)<<8 | uint16(button) }

// ActionButtons holds the action bars of both talent groups.
type ActionButtons struct {
	items *entity.Collection[uint16, *ActionButton]
}

func newActionButtons() *ActionButtons {
	return &ActionButtons{items: entity.NewCollection[uint16, *ActionButton]()}
}

func (a *ActionButtons) load(guid int64, rows []store.ActionRow, r *repairs) {
	for _, row := range rows {
		if row.Spec < 0 || row.Spec >= MaxTalentGroups || row.Button < 0 || row.Button >= MaxActionButtons {
			r.delete("action", store.CharDelAction, guid, row.Spec, row.Button)
			continue
		}
		a.items.Load(actionKey(uint8(row.Spec), uint8(row.Button)),
			&ActionButton{Action: uint64(row.Action), Type: ActionType(row.Type)})
	}
}

// Get returns the button at (spec, button).
func (a *ActionButtons) Get(spec, button uint8) (*ActionButton, bool) {
	return a.items.Get(actionKey(spec, button))
}

// Set assigns an action to a button.
func (a *ActionButtons) Set(spec, button uint8, action uint64, typ ActionType) bool {
	if spec >= MaxTalentGroups || button >= MaxActionButtons {
		return false
	}
	key := actionKey(spec, button)
	if b, ok := a.items.Get(key); ok {
		if b.Action != action || b.Type != typ {
			b.Action, b.Type = action, typ
			b.MarkChanged()
		}
		return true
	}
	a.items.Put(key, &ActionButton{Action: action, Type: typ})
	return true
}

// Clear empties a button.
func (a *ActionButtons) Clear(spec, button uint8) bool {
	return a.items.Remove(actionKey(spec, button), entity.Deleted)
}

// Dirty returns the number of buttons needing a statement.
func (a *ActionButtons) Dirty() int { return a.items.Dirty() }

func (a *ActionButtons) emit(tx *store.Transaction, guid int64) {
	a.items.Flush(func(k uint16, b *ActionButton) {
		spec, button := int16(k>>8), int16(k&0xff)
		switch b.State() {
		case entity.New:
			tx.Append(store.CharInsAction, guid, spec, button, int64(b.Action), int16(b.Type))
		case entity.Changed:
			tx.Append(store.CharUpdAction, guid, spec, button, int64(b.Action), int16(b.Type))
		default:
			tx.Append(store.CharDelAction, guid, spec, button)
		}
	})
}

func (a *ActionButtons) committed() { a.items.Commit() }
