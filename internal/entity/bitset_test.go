// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CypherCore/CypherCore-sub002/internal/entity"
)

func TestBitSet_SetGrowsAndMarksDirty(t *testing.T) {
	b := entity.NewBitSet()
	assert.True(t, b.Set(70))
	assert.False(t, b.Set(70), "second set is a no-op")
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.Test(70))
	assert.False(t, b.Test(69))
	assert.False(t, b.Test(1000))

	var dirty []int
	b.DirtyBlocks(func(i int, v uint32) {
		dirty = append(dirty, i)
		assert.Equal(t, uint32(1)<<6, v)
	})
	assert.Equal(t, []int{2}, dirty, "only the touched block is dirty")
}

func TestBitSet_LoadBlockIsClean(t *testing.T) {
	b := entity.NewBitSet()
	b.LoadBlock(0, 0b1011)
	b.LoadBlock(4, 1)

	assert.Equal(t, 0, b.DirtyCount())
	assert.Equal(t, 4, b.Count())
	assert.True(t, b.Test(4*entity.BlockBits))
}

func TestBitSet_ClearNeverShrinks(t *testing.T) {
	b := entity.NewBitSet()
	b.Set(40)
	b.ClearDirty()

	assert.True(t, b.Clear(40))
	assert.False(t, b.Clear(40))
	assert.False(t, b.Clear(5000))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, b.DirtyCount())

	b.ClearDirty()
	assert.Equal(t, 0, b.DirtyCount())
	assert.Equal(t, []uint32{0, 0}, b.Blocks())
}
