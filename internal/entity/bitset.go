// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package entity

import "math/bits"

// BlockBits is the number of bits stored per persisted block.
const BlockBits = 32

// BitSet is a growable boolean vector persisted as packed 32-bit blocks.
//
// Growth is append-only: bits may be set or cleared but the block count
// never shrinks, so a block index written once keeps its meaning. Each block
// carries a dirty flag so saves only rewrite blocks touched since the last
// commit.
type BitSet struct {
	blocks []uint32
	dirty  []bool
}

// NewBitSet returns an empty bitset.
func NewBitSet() *BitSet {
	return &BitSet{}
}

func (b *BitSet) grow(block int) {
	for len(b.blocks) <= block {
		b.blocks = append(b.blocks, 0)
		b.dirty = append(b.dirty, false)
	}
}

// LoadBlock installs a block read from storage without marking it dirty.
func (b *BitSet) LoadBlock(index int, value uint32) {
	b.grow(index)
	b.blocks[index] = value
}

// Set turns bit i on. It reports whether the bit was previously off.
func (b *BitSet) Set(i uint32) bool {
	block, bit := int(i/BlockBits), i%BlockBits
	b.grow(block)
	mask := uint32(1) << bit
	if b.blocks[block]&mask != 0 {
		return false
	}
	b.blocks[block] |= mask
	b.dirty[block] = true
	return true
}

// Clear turns bit i off. The block is kept even when it becomes zero.
func (b *BitSet) Clear(i uint32) bool {
	block, bit := int(i/BlockBits), i%BlockBits
	if block >= len(b.blocks) {
		return false
	}
	mask := uint32(1) << bit
	if b.blocks[block]&mask == 0 {
		return false
	}
	b.blocks[block] &^= mask
	b.dirty[block] = true
	return true
}

// Test reports whether bit i is set.
func (b *BitSet) Test(i uint32) bool {
	block := int(i / BlockBits)
	if block >= len(b.blocks) {
		return false
	}
	return b.blocks[block]&(uint32(1)<<(i%BlockBits)) != 0
}

// Len returns the number of blocks.
func (b *BitSet) Len() int {
	return len(b.blocks)
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	n := 0
	for _, blk := range b.blocks {
		n += bits.OnesCount32(blk)
	}
	return n
}

// DirtyBlocks visits every block changed since the last ClearDirty, in
// index order. Zero blocks are reported too so a cleared block can be
// rewritten; callers that only persist nonzero blocks skip them.
func (b *BitSet) DirtyBlocks(fn func(index int, value uint32)) {
	for i, d := range b.dirty {
		if d {
			fn(i, b.blocks[i])
		}
	}
}

// DirtyCount returns the number of dirty blocks.
func (b *BitSet) DirtyCount() int {
	n := 0
	for _, d := range b.dirty {
		if d {
			n++
		}
	}
	return n
}

// ClearDirty acknowledges a successful save.
func (b *BitSet) ClearDirty() {
	clear(b.dirty)
}

// Blocks returns a copy of the packed blocks.
func (b *BitSet) Blocks() []uint32 {
	out := make([]uint32, len(b.blocks))
	copy(out, b.blocks)
	return out
}
