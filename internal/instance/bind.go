// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package instance

import (
	"fmt"
	"time"

	"github.com/CypherCore/CypherCore-sub002/internal/content"
	"github.com/CypherCore/CypherCore-sub002/internal/entity"
	"github.com/CypherCore/CypherCore-sub002/internal/store"
)

// Bind ties one owner to one save for a (map, difficulty).
type Bind struct {
	entity.Tracked

	save      *Save
	permanent bool
	extend    ExtendState
	// rollovers of save already applied to extend
	seen uint32
}

// Save returns the bound instance save.
func (b *Bind) Save() *Save { return b.save }

// Permanent reports whether the bind is a lockout.
func (b *Bind) Permanent() bool { return b.permanent }

// Extend returns the extend state.
func (b *Bind) Extend() ExtendState { return b.extend }

// ResetTime returns when the lock ends. An extended lock runs one full
// interval past the save's next reset.
func (b *Bind) ResetTime(interval time.Duration) time.Time {
	t := b.save.ResetTime()
	if t.IsZero() {
		return t
	}
	if b.extend == ExtendExtended {
		t = t.Add(interval)
	}
	return t
}

// TimeRemaining returns the time left on the lock, never negative.
func (b *Bind) TimeRemaining(now time.Time, interval time.Duration) time.Duration {
	t := b.ResetTime(interval)
	if t.IsZero() || !t.After(now) {
		return 0
	}
	return t.Sub(now)
}

// ResetReport lists the maps a ResetInstances call cleared and the maps
// whose live instance refused.
type ResetReport struct {
	Reset   []uint32
	Refused []uint32
}

// BindStore holds one owner's binds keyed by (difficulty, map). Only the
// owner's session touches it.
type BindStore struct {
	owner Owner
	reg   *Registry
	binds *entity.Collection[uint64, *Bind]
}

// NewBindStore creates an empty store for owner.
func NewBindStore(reg *Registry, owner Owner) *BindStore {
	return &BindStore{
		owner: owner,
		reg:   reg,
		binds: entity.NewCollection[uint64, *Bind](),
	}
}

// Owner returns the store's owner.
func (s *BindStore) Owner() Owner { return s.owner }

// Registry returns the registry the store's saves belong to.
func (s *BindStore) Registry() *Registry { return s.reg }

// Load restores a stored bind. The bind starts Unchanged.
func (s *BindStore) Load(save *Save, permanent bool, extend ExtendState) *Bind {
	if !extend.Persisted() {
		extend = ExtendNormal
	}
	if s.owner.Kind == OwnerGroup {
		extend = ExtendNormal
	}
	b := &Bind{save: save, permanent: permanent, extend: extend, seen: save.rolloverCount()}
	s.reg.addRef(save, s.owner, permanent)
	s.binds.Load(bindKey(save.MapID(), save.Difficulty()), b)
	return b
}

// Get returns the live bind for (map, difficulty).
func (s *BindStore) Get(mapID uint32, d content.Difficulty) (*Bind, bool) {
	return s.live(bindKey(mapID, d))
}

// Len returns the number of live binds.
func (s *BindStore) Len() int {
	s.sync()
	return s.binds.Len()
}

// Dirty returns the number of binds needing a statement.
func (s *BindStore) Dirty() int {
	s.sync()
	return s.binds.Dirty()
}

// Each visits live binds in key order until fn returns false.
func (s *BindStore) Each(fn func(mapID uint32, d content.Difficulty, b *Bind) bool) {
	for _, key := range s.keys() {
		b, ok := s.live(key)
		if !ok {
			continue
		}
		mapID, d := splitKey(key)
		if !fn(mapID, d, b) {
			return
		}
	}
}

// Bind binds the owner to save. An existing bind for the same (map,
// difficulty) is rebound and marked Changed only when something differs;
// otherwise a New bind is created. ExtendKeep keeps the existing extend
// state when rebinding to the same save and means Normal otherwise.
func (s *BindStore) Bind(save *Save, permanent bool, extend ExtendState) *Bind {
	key := bindKey(save.MapID(), save.Difficulty())
	existing, ok := s.live(key)

	switch {
	case extend == ExtendKeep && ok && existing.save == save:
		extend = existing.extend
	case extend == ExtendKeep:
		extend = ExtendNormal
	case !extend.Persisted():
		panic(fmt.Sprintf("instance: invalid extend state %s", extend))
	}
	if s.owner.Kind == OwnerGroup {
		extend = ExtendNormal
	}

	if ok {
		if existing.save == save && existing.permanent == permanent && existing.extend == extend {
			return existing
		}
		if existing.save != save {
			s.reg.removeRef(existing.save, s.owner)
			existing.seen = save.rolloverCount()
		}
		s.reg.addRef(save, s.owner, permanent)
		existing.save = save
		existing.permanent = permanent
		existing.extend = extend
		existing.MarkChanged()
		return existing
	}

	b := &Bind{save: save, permanent: permanent, extend: extend, seen: save.rolloverCount()}
	s.reg.addRef(save, s.owner, permanent)
	s.binds.Put(key, b)
	bindsCreated.WithLabelValues(kindLabel(s.owner)).Inc()
	return b
}

// Unbind removes the bind for (map, difficulty) and releases its save
// reference. With unload set the durable row is kept for the next login and
// no statement will be emitted. It reports whether a bind existed.
func (s *BindStore) Unbind(mapID uint32, d content.Difficulty, unload bool) bool {
	key := bindKey(mapID, d)
	b, ok := s.live(key)
	if !ok {
		return false
	}
	if unload {
		s.binds.Forget(key)
	} else {
		s.binds.Remove(key, entity.Deleted)
	}
	s.reg.removeRef(b.save, s.owner)
	return true
}

// UnloadAll releases every save reference without touching storage. Used
// when the owner leaves the world.
func (s *BindStore) UnloadAll() {
	for _, key := range s.keys() {
		mapID, d := splitKey(key)
		s.Unbind(mapID, d, true)
	}
}

// ResetInstances clears the owner's resettable binds at difficulty d on
// maps whose raid type matches isRaid. ResetAll skips raid maps and heroic
// difficulties. A live instance may refuse, in which case its bind stays.
// Character binds are only cleared when the save is resettable and the
// cleared save's instance row is deleted on tx. When a group disbands or
// changes difficulty its binds are always dropped; the instance row goes
// with them only when nothing else holds it.
func (s *BindStore) ResetInstances(method ResetMethod, isRaid bool, d content.Difficulty, world World, tx *store.Transaction) ResetReport {
	if world == nil {
		world = NoWorld{}
	}
	var report ResetReport
	forceUnbind := s.owner.Kind == OwnerGroup && (method == ResetGroupDisband || method == ResetChangeDifficulty)

	for _, key := range s.keys() {
		mapID, kd := splitKey(key)
		if kd != d {
			continue
		}
		b, ok := s.live(key)
		if !ok {
			continue
		}
		info, ok := s.reg.content.Map(mapID)
		if !ok || info.IsRaid() != isRaid {
			continue
		}
		if method == ResetAll && (info.IsRaid() || s.reg.content.IsHeroic(d)) {
			continue
		}

		save := b.save
		resettable := save.CanReset()
		live, loaded := world.FindInstance(mapID, save.ID())

		if !forceUnbind {
			if !resettable {
				continue
			}
			if loaded && !live.Reset(method) {
				report.Refused = append(report.Refused, mapID)
				resets.WithLabelValues(method.String(), "refused").Inc()
				continue
			}
			s.reg.delete(save, tx)
			s.binds.Forget(key)
			s.reg.removeRef(save, s.owner)
			report.Reset = append(report.Reset, mapID)
			resets.WithLabelValues(method.String(), "reset").Inc()
			continue
		}

		empty := true
		if loaded {
			if resettable {
				empty = live.Reset(method)
			} else {
				empty = live.PlayerCount() == 0
			}
		}
		if empty && resettable {
			s.reg.delete(save, tx)
		} else if b.State() != entity.New {
			tx.Append(store.CharDelGroupBind, s.owner.GUID, int32(mapID), int16(d))
		}
		s.binds.Forget(key)
		s.reg.removeRef(save, s.owner)
		report.Reset = append(report.Reset, mapID)
		resets.WithLabelValues(method.String(), "unbound").Inc()
	}
	return report
}

// EmitStatements queues the minimal statements for every dirty bind and
// returns how many were queued.
func (s *BindStore) EmitStatements(tx *store.Transaction) int {
	s.sync()
	n := 0
	s.binds.Flush(func(key uint64, b *Bind) {
		mapID, d := splitKey(key)
		guid, m, diff := s.owner.GUID, int32(mapID), int16(d)
		if s.owner.Kind == OwnerGroup {
			switch b.State() {
			case entity.New:
				tx.Append(store.CharInsGroupBind, guid, m, diff, int32(b.save.ID()), b.permanent)
			case entity.Changed:
				tx.Append(store.CharUpdGroupBind, guid, m, diff, int32(b.save.ID()), b.permanent)
			default:
				tx.Append(store.CharDelGroupBind, guid, m, diff)
			}
			n++
			return
		}
		switch b.State() {
		case entity.New:
			tx.Append(store.CharInsBind, guid, m, diff, int32(b.save.ID()), b.permanent, int16(b.extend))
		case entity.Changed:
			tx.Append(store.CharUpdBind, guid, m, diff, int32(b.save.ID()), b.permanent, int16(b.extend))
		default:
			tx.Append(store.CharDelBind, guid, m, diff)
		}
		n++
	})
	return n
}

// EnsureInstances queues an instance insert ahead of the statements of
// every dirty bind whose save is not durable yet, unless tx already
// inserts that row. A save created by another owner, such as a group, may
// still have its insert waiting in that owner's transaction; the insert is
// idempotent, so whichever transaction commits first writes the row. It
// returns how many inserts were queued.
func (s *BindStore) EnsureInstances(tx *store.Transaction) int {
	s.sync()
	inserted := insertedInstances(tx)
	n := 0
	s.binds.Flush(func(_ uint64, b *Bind) {
		if b.State().Gone() {
			return
		}
		id := int32(b.save.ID())
		if inserted[id] || b.save.Durable() || b.save.Deleted() {
			return
		}
		b.save.insertStatement(tx)
		inserted[id] = true
		n++
	})
	return n
}

// Committed acknowledges that emitted statements were committed.
func (s *BindStore) Committed() { s.binds.Commit() }

// live returns the bind at key after catching up with resets that
// happened since it was last touched. Binds whose save was deleted or
// whose lock ran out are dropped; their rows were already handled by the
// reset statements.
func (s *BindStore) live(key uint64) (*Bind, bool) {
	b, ok := s.binds.Get(key)
	if !ok {
		return nil, false
	}
	if b.save.Deleted() {
		s.binds.Forget(key)
		s.reg.removeRef(b.save, s.owner)
		return nil, false
	}
	for n := b.save.rolloverCount(); b.seen < n; {
		b.seen++
		next, survives := b.extend.next()
		if s.owner.Kind == OwnerGroup || !survives {
			if b.State() == entity.Changed {
				s.binds.Remove(key, entity.Deleted)
			} else {
				s.binds.Forget(key)
			}
			s.reg.removeRef(b.save, s.owner)
			return nil, false
		}
		b.extend = next
	}
	return b, true
}

// sync brings every bind up to date with its save.
func (s *BindStore) sync() {
	for _, key := range s.keys() {
		s.live(key)
	}
}

func (s *BindStore) keys() []uint64 {
	var keys []uint64
	s.binds.Each(func(k uint64, _ *Bind) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func kindLabel(o Owner) string {
	if o.Kind == OwnerGroup {
		return "group_bind"
	}
	return "character_bind"
}
