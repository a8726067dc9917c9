// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import (
	"log/slog"
	"sync"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Save is one concrete instantiation of a dungeon or raid. It is shared by
// every bind that references it; its mutable fields are guarded by the
// owning registry.
type Save struct {
	reg        *Registry
	id         uint32
	mapID      uint32
	difficulty content.Difficulty
	completed  uint32
	data       string

	// guarded by reg.mu
	resetTime time.Time
	canReset  bool
	owners    map[Owner]bool
	rollovers uint32
	deleted   bool
	// the instance row is committed
	durable bool
}

// ID returns the instance id.
func (s *Save) ID() uint32 { return s.id }

// MapID returns the map of the instance.
func (s *Save) MapID() uint32 { return s.mapID }

// Difficulty returns the difficulty of the instance.
func (s *Save) Difficulty() content.Difficulty { return s.difficulty }

// CompletedEncounters returns the encounter-completion mask.
func (s *Save) CompletedEncounters() uint32 { return s.completed }

// Data returns the opaque instance script data.
func (s *Save) Data() string { return s.data }

// ResetTime returns the next scheduled reset. The zero time means the
// instance never resets on a schedule.
func (s *Save) ResetTime() time.Time {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.resetTime
}

// CanReset reports whether the save may be reset. A save referenced by any
// permanent bind is never resettable.
func (s *Save) CanReset() bool {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.canResetLocked()
}

func (s *Save) canResetLocked() bool {
	if !s.canReset {
		return false
	}
	for _, permanent := range s.owners {
		if permanent {
			return false
		}
	}
	return true
}

// SetCanReset toggles the instance's own reset eligibility, for example
// while an encounter is in progress.
func (s *Save) SetCanReset(v bool) {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	s.canReset = v
}

// Refs returns the number of owners bound to the save.
func (s *Save) Refs() int {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return len(s.owners)
}

// Deleted reports whether the save's row has been deleted by a reset.
func (s *Save) Deleted() bool {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.deleted
}

// Durable reports whether the instance row is known to be committed.
// A save created in this process is not durable until the transaction
// carrying its insert has been acknowledged through Registry.Committed.
func (s *Save) Durable() bool {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.durable
}

func (s *Save) rolloverCount() uint32 {
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	return s.rollovers
}

// Registry holds every loaded instance save.
type Registry struct {
	content Content
	logger  *slog.Logger

	mu     sync.Mutex
	saves  map[uint32]*Save
	nextID uint32
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(c Content, opts ...RegistryOption) *Registry {
	r := &Registry{
		content: c,
		logger:  slog.Default(),
		saves:   make(map[uint32]*Save),
		nextID:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Content returns the content tables the registry was built with.
func (r *Registry) Content() Content { return r.content }

// Len returns the number of loaded saves.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

// Get returns the loaded save with the given id.
func (r *Registry) Get(id uint32) (*Save, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.saves[id]
	return s, ok
}

// Reserve raises the id allocator above every id stored in the database.
func (r *Registry) Reserve(maxID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if maxID >= r.nextID {
		r.nextID = maxID + 1
	}
}

// Ensure returns the loaded save for row, adding it if absent. Rows read
// alongside binds carry the instance record, so loading a character never
// needs a separate instance query.
func (r *Registry) Ensure(row store.InstanceRow) *Save {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uint32(row.ID)
	if s, ok := r.saves[id]; ok {
		return s
	}
	s := &Save{
		reg:        r,
		id:         id,
		mapID:      uint32(row.Map),
		difficulty: content.Difficulty(row.Difficulty),
		completed:  uint32(row.CompletedEncounters),
		data:       row.Data,
		canReset:   true,
		owners:     make(map[Owner]bool),
		durable:    true,
	}
	if row.ResetTime > 0 {
		s.resetTime = time.Unix(row.ResetTime, 0)
	}
	r.saves[id] = s
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return s
}

// Create allocates a new save and queues its insert on tx. Maps with a
// reset interval get their first reset one interval from now.
func (r *Registry) Create(tx *store.Transaction, mapID uint32, d content.Difficulty, now time.Time) *Save {
	var reset time.Time
	if md, ok := r.content.MapDifficulty(mapID, d); ok && md.ResetSeconds > 0 {
		reset = now.Add(time.Duration(md.ResetSeconds) * time.Second)
	}

	r.mu.Lock()
	s := &Save{
		reg:        r,
		id:         r.nextID,
		mapID:      mapID,
		difficulty: d,
		resetTime:  reset,
		canReset:   true,
		owners:     make(map[Owner]bool),
	}
	r.nextID++
	r.saves[s.id] = s
	r.mu.Unlock()

	s.insertStatement(tx)
	bindsCreated.WithLabelValues("instance").Inc()
	return s
}

// Committed marks the saves whose instance rows tx inserted as durable.
// Call it once tx has committed.
func (r *Registry) Committed(tx *store.Transaction) {
	ids := insertedInstances(tx)
	if len(ids) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range ids {
		if s, ok := r.saves[uint32(id)]; ok {
			s.durable = true
		}
	}
}

// insertStatement queues the idempotent insert of s's instance row.
func (s *Save) insertStatement(tx *store.Transaction) {
	s.reg.mu.Lock()
	reset := s.resetTime
	s.reg.mu.Unlock()
	tx.Append(store.CharInsInstance, int32(s.id), int32(s.mapID), int16(s.difficulty),
		unixOrZero(reset), int32(s.completed), s.data)
}

// insertedInstances returns the instance ids whose rows tx inserts.
func insertedInstances(tx *store.Transaction) map[int32]bool {
	ids := make(map[int32]bool)
	for _, st := range tx.Statements() {
		if st.ID != store.CharInsInstance || len(st.Args) == 0 {
			continue
		}
		if id, ok := st.Args[0].(int32); ok {
			ids[id] = true
		}
	}
	return ids
}

// addRef records owner as bound to s.
func (r *Registry) addRef(s *Save, owner Owner, permanent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.owners[owner] = permanent
}

// removeRef drops owner's reference and unloads s once nobody holds it.
func (r *Registry) removeRef(s *Save, owner Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(s.owners, owner)
	if len(s.owners) == 0 && r.saves[s.id] == s {
		delete(r.saves, s.id)
		r.logger.Debug("instance save unloaded", "instance", s.id, "map", s.mapID)
	}
}

// delete queues removal of the instance row. Binds held by other owners are
// removed by the foreign-key cascade; their stores drop them on next access.
func (r *Registry) delete(s *Save, tx *store.Transaction) {
	r.mu.Lock()
	s.deleted = true
	r.mu.Unlock()
	tx.Append(store.CharDelInstance, int32(s.id))
}

// ResetOrExpire runs the scheduled reset of every loaded save whose reset
// time has passed. Offline owners are rolled over by bulk statements queued
// on tx; loaded bind stores apply the same transition the next time they
// touch the bind. Each reset save gets its next reset time.
func (r *Registry) ResetOrExpire(now time.Time, tx *store.Transaction) int {
	r.mu.Lock()
	due := make([]*Save, 0)
	for _, s := range r.saves {
		if !s.resetTime.IsZero() && !s.resetTime.After(now) && !s.deleted {
			due = append(due, s)
		}
	}
	r.mu.Unlock()

	for _, s := range due {
		interval := time.Duration(0)
		if md, ok := r.content.MapDifficulty(s.mapID, s.difficulty); ok {
			interval = time.Duration(md.ResetSeconds) * time.Second
		}

		r.mu.Lock()
		s.rollovers++
		next := s.resetTime
		if interval > 0 {
			for !next.After(now) {
				next = next.Add(interval)
			}
		} else {
			next = time.Time{}
		}
		s.resetTime = next
		r.mu.Unlock()

		tx.Append(store.CharDelExpiredBinds, int32(s.id))
		tx.Append(store.CharUpdBindsRollover, int32(s.id))
		tx.Append(store.CharDelGroupBindsByInstance, int32(s.id))
		tx.Append(store.CharUpdInstanceResetTime, int32(s.id), unixOrZero(next))
		r.logger.Info("instance reset", "instance", s.id, "map", s.mapID, "next_reset", next)
	}
	return len(due)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
