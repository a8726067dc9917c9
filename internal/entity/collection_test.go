// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CypherCore/CypherCore-sub002/internal/entity"
)

type skill struct {
	entity.Tracked
	value uint16
}

func TestTracked_MarkChanged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*entity.Tracked)
		want  entity.State
	}{
		{"unchanged promotes to changed", func(*entity.Tracked) {}, entity.Changed},
		{"new stays new", func(tr *entity.Tracked) { tr.MarkNew() }, entity.New},
		{"changed stays changed", func(tr *entity.Tracked) { tr.MarkNew(); tr.MarkSaved(); tr.MarkChanged() }, entity.Changed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr entity.Tracked
			tt.setup(&tr)
			tr.MarkChanged()
			assert.Equal(t, tt.want, tr.State())
		})
	}
}

func TestTracked_MarkChangedOnGonePanics(t *testing.T) {
	var tr entity.Tracked
	tr.MarkDeleted()
	assert.Panics(t, func() { tr.MarkChanged() })

	var removed entity.Tracked
	removed.MarkRemoved()
	assert.Panics(t, func() { removed.MarkChanged() })
}

func TestCollection_PutAssignsState(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()

	fresh := &skill{value: 1}
	c.Put(10, fresh)
	assert.Equal(t, entity.New, fresh.State())

	c.Load(20, &skill{value: 5})
	replacement := &skill{value: 6}
	c.Put(20, replacement)
	assert.Equal(t, entity.Changed, replacement.State(), "durable key is updated, not re-inserted")

	again := &skill{value: 2}
	c.Put(10, again)
	assert.Equal(t, entity.New, again.State(), "replacing a new entity keeps it new")
}

func TestCollection_PutOverPendingDelete(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	c.Load(7, &skill{value: 1})
	require.True(t, c.Remove(7, entity.Deleted))
	assert.False(t, c.Has(7))

	back := &skill{value: 3}
	c.Put(7, back)
	assert.Equal(t, entity.Changed, back.State())
	assert.Equal(t, 1, c.Dirty())
}

func TestCollection_RemoveNewVanishes(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	c.Put(1, &skill{})
	require.True(t, c.Remove(1, entity.Deleted))

	assert.Equal(t, 0, c.Dirty(), "a never-saved entity produces no statement")
	flushed := 0
	c.Flush(func(uint32, *skill) { flushed++ })
	assert.Zero(t, flushed)
}

func TestCollection_RemoveUnknownKey(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	assert.False(t, c.Remove(99, entity.Deleted))

	c.Load(1, &skill{})
	require.True(t, c.Remove(1, entity.Removed))
	assert.False(t, c.Remove(1, entity.Deleted), "already gone")
}

func TestCollection_FlushVisitsOnlyDirtyInKeyOrder(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	for i := uint32(1); i <= 5; i++ {
		c.Load(i, &skill{value: uint16(i)})
	}
	s3, _ := c.Get(3)
	s3.MarkChanged()
	c.Put(9, &skill{})
	c.Remove(1, entity.Deleted)

	var keys []uint32
	var states []entity.State
	c.Flush(func(k uint32, v *skill) {
		keys = append(keys, k)
		states = append(states, v.State())
	})

	assert.Equal(t, []uint32{1, 3, 9}, keys)
	assert.Equal(t, []entity.State{entity.Deleted, entity.Changed, entity.New}, states)
	assert.Equal(t, 3, c.Dirty())
}

func TestCollection_CommitResetsAndPrunes(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	c.Load(1, &skill{})
	c.Load(2, &skill{})
	c.Load(3, &skill{})
	c.Put(4, &skill{})
	s2, _ := c.Get(2)
	s2.MarkChanged()
	c.Remove(3, entity.Deleted)
	c.Remove(1, entity.Removed)

	c.Commit()

	assert.Equal(t, 0, c.Dirty())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has(1))
	assert.False(t, c.Has(3))
	c.Each(func(_ uint32, v *skill) bool {
		assert.Equal(t, entity.Unchanged, v.State())
		return true
	})
}

func TestCollection_EachStopsEarly(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	for i := uint32(1); i <= 4; i++ {
		c.Load(i, &skill{})
	}
	var seen []uint32
	c.Each(func(k uint32, _ *skill) bool {
		seen = append(seen, k)
		return k < 2
	})
	assert.Equal(t, []uint32{1, 2}, seen)
}

func TestCollection_Forget(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	c.Load(1, &skill{})
	c.Forget(1)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Dirty())
}

func TestCollection_Revive(t *testing.T) {
	c := entity.NewCollection[uint32, *skill]()
	c.Load(10, &skill{value: 1})
	c.Load(11, &skill{value: 2})

	assert.False(t, c.Revive(10), "live entity is not pending removal")
	assert.False(t, c.Revive(99))

	require.True(t, c.Remove(10, entity.Removed))
	require.True(t, c.Remove(11, entity.Deleted))
	assert.True(t, c.Revive(10))
	assert.True(t, c.Revive(11))

	assert.Equal(t, 2, c.Len())
	assert.Zero(t, c.Dirty())
	got, ok := c.Get(10)
	require.True(t, ok)
	assert.Equal(t, entity.Unchanged, got.State())
}
