// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package character

import "github.com/CypherCore/CypherCore-sub002/internal/store"

// DeclinedNames holds the genitive, dative, accusative, instrumental and
// prepositional forms of the character name.
type DeclinedNames struct {
	Forms [5]string
	dirty bool
}

func (d *DeclinedNames) load(row *store.DeclinedNameRow) {
	if row != nil {
		d.Forms = row.Names
	}
}

// Set replaces every form.
func (d *DeclinedNames) Set(forms [5]string) {
	if d.Forms != forms {
		d.Forms = forms
		d.dirty = true
	}
}

// Empty reports whether no form is set.
func (d *DeclinedNames) Empty() bool { return d.Forms == [5]string{} }

func (d *DeclinedNames) emit(tx *store.Transaction, guid int64) {
	if !d.dirty {
		return
	}
	tx.Append(store.CharDelDeclinedName, guid)
	if d.Empty() {
		return
	}
	f := d.Forms
	tx.Append(store.CharInsDeclinedName, guid, f[0], f[1], f[2], f[3], f[4])
}

func (d *DeclinedNames) committed() { d.dirty = false }
