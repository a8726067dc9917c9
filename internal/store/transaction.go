// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import "fmt"

// Statement is one queued data-modification statement with its arguments.
type Statement struct {
	ID   StatementID
	Args []any
}

// Transaction accumulates statements for one database scope. Nothing is sent
// to the database until an Executor commits it; all statements then succeed
// or fail together.
type Transaction struct {
	scope Scope
	stmts []Statement
}

// NewTransaction creates an empty transaction for scope.
func NewTransaction(scope Scope) *Transaction {
	return &Transaction{scope: scope}
}

// Scope returns the database scope of the transaction.
func (t *Transaction) Scope() Scope {
	return t.scope
}

// Append queues a statement. Queuing a statement registered for another
// scope is a programming error and panics.
func (t *Transaction) Append(id StatementID, args ...any) {
	if s := id.Scope(); s != t.scope {
		panic(fmt.Sprintf("store: %s belongs to %s scope, not %s", id, s, t.scope))
	}
	t.stmts = append(t.stmts, Statement{ID: id, Args: args})
}

// Len returns the number of queued statements.
func (t *Transaction) Len() int {
	return len(t.stmts)
}

// Empty reports whether no statements are queued.
func (t *Transaction) Empty() bool {
	return len(t.stmts) == 0
}

// Statements returns the queued statements in order.
func (t *Transaction) Statements() []Statement {
	out := make([]Statement, len(t.stmts))
	copy(out, t.stmts)
	return out
}

// Count returns how many queued statements have the given id.
func (t *Transaction) Count(id StatementID) int {
	n := 0
	for _, s := range t.stmts {
		if s.ID == id {
			n++
		}
	}
	return n
}

// Merge appends every statement of other. Both must share a scope.
func (t *Transaction) Merge(other *Transaction) {
	if other == nil {
		return
	}
	if other.scope != t.scope {
		panic(fmt.Sprintf("store: cannot merge %s transaction into %s", other.scope, t.scope))
	}
	t.stmts = append(t.stmts, other.stmts...)
}
