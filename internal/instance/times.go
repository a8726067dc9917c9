// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import (
	"maps"
	"slices"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// EntryWindow is how long an entered instance counts against the hourly
// limit.
const EntryWindow = time.Hour

// EntryTimes tracks, per account, the instances entered within the last
// EntryWindow. It is saved wholesale whenever anything changed.
type EntryTimes struct {
	account int64
	release map[uint32]time.Time
	dirty   bool
}

// NewEntryTimes creates an empty tracker for account.
func NewEntryTimes(account int64) *EntryTimes {
	return &EntryTimes{account: account, release: make(map[uint32]time.Time)}
}

// Load restores a stored entry.
func (t *EntryTimes) Load(instanceID uint32, release time.Time) {
	t.release[instanceID] = release
}

// Len returns the number of tracked instances.
func (t *EntryTimes) Len() int { return len(t.release) }

// Dirty reports whether the tracker must be rewritten.
func (t *EntryTimes) Dirty() bool { return t.dirty }

// Allowed reports whether entering instanceID keeps the account within limit
// instances per window. Re-entering a tracked instance is always allowed.
// A limit of zero disables the limit. Expired entries are pruned.
func (t *EntryTimes) Allowed(instanceID uint32, now time.Time, limit int) bool {
	for id, release := range t.release {
		if !release.After(now) {
			delete(t.release, id)
			t.dirty = true
		}
	}
	if limit <= 0 {
		return true
	}
	if _, ok := t.release[instanceID]; ok && instanceID != 0 {
		return true
	}
	return len(t.release) < limit
}

// Record notes that the account entered instanceID.
func (t *EntryTimes) Record(instanceID uint32, now time.Time) {
	if _, ok := t.release[instanceID]; ok {
		return
	}
	t.release[instanceID] = now.Add(EntryWindow)
	t.dirty = true
}

// EmitStatements rewrites the account's entries when dirty.
func (t *EntryTimes) EmitStatements(tx *store.Transaction) int {
	if !t.dirty {
		return 0
	}
	tx.Append(store.CharDelInstanceTimes, t.account)
	for _, id := range slices.Sorted(maps.Keys(t.release)) {
		tx.Append(store.CharInsInstanceTime, t.account, int32(id), t.release[id].Unix())
	}
	return 1 + len(t.release)
}

// Committed clears the dirty flag.
func (t *EntryTimes) Committed() { t.dirty = false }
