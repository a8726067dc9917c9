// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_AppendKeepsOrder(t *testing.T) {
	tx := NewTransaction(ScopeCharacter)
	assert.True(t, tx.Empty())

	tx.Append(CharDelGlyphs, int64(1))
	tx.Append(CharInsGlyph, int64(1), int16(0), int32(57))
	tx.Append(CharInsGlyph, int64(1), int16(0), int32(58))

	require.Equal(t, 3, tx.Len())
	stmts := tx.Statements()
	assert.Equal(t, CharDelGlyphs, stmts[0].ID)
	assert.Equal(t, []any{int64(1), int16(0), int32(58)}, stmts[2].Args)
	assert.Equal(t, 2, tx.Count(CharInsGlyph))
	assert.Equal(t, 0, tx.Count(CharDelSkill))
}

func TestTransaction_StatementsIsACopy(t *testing.T) {
	tx := NewTransaction(ScopeCharacter)
	tx.Append(CharDelMail, int64(5))

	stmts := tx.Statements()
	stmts[0].ID = CharDelItem

	assert.Equal(t, CharDelMail, tx.Statements()[0].ID)
}

func TestTransaction_AppendWrongScopePanics(t *testing.T) {
	tx := NewTransaction(ScopeCharacter)
	assert.Panics(t, func() { tx.Append(LoginRepToy, int64(1), int32(2), false, false) })
}

func TestTransaction_Merge(t *testing.T) {
	a := NewTransaction(ScopeLogin)
	a.Append(LoginRepToy, int64(1), int32(2), false, false)
	b := NewTransaction(ScopeLogin)
	b.Append(LoginRepMount, int64(1), int32(3), int16(0))

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, 2, a.Len())
	assert.Panics(t, func() { a.Merge(NewTransaction(ScopeCharacter)) })
}
