// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"math"
	"sync/atomic"

	"github.com/gogpu/gol/bitgrid"
)

// Bindings are the decoded resources of one dispatch.
type Bindings struct {
	Width, Height uint32
	BlockWidth    uint32
	Current       []uint32
	Next          []uint32
}

// DecodeBindings builds Bindings from raw buffer words keyed by binding index.
// It reports false if a binding is missing or too small.
func DecodeBindings(res map[uint32][]uint32) (Bindings, bool) {
	grid, ok1 := res[BindingGridSize]
	block, ok2 := res[BindingBlockSize]
	cur, ok3 := res[BindingCurrent]
	next, ok4 := res[BindingNext]
	if !ok1 || !ok2 || !ok3 || !ok4 || len(grid) < 2 || len(block) < 2 {
		return Bindings{}, false
	}
	b := Bindings{
		Width:      uint32(math.Float32frombits(grid[0])),
		Height:     uint32(math.Float32frombits(grid[1])),
		BlockWidth: block[0],
		Current:    cur,
		Next:       next,
	}
	need := int(b.BlockWidth) * int(b.Height)
	if len(cur) < need || len(next) < need {
		return Bindings{}, false
	}
	return b, true
}

// RunWorkgroup executes one workgroup of the Life shader on the CPU.
// It mirrors life.wgsl invocation for invocation and may run concurrently
// with other workgroups of the same dispatch.
func RunWorkgroup(group [3]uint32, res map[uint32][]uint32) {
	b, ok := DecodeBindings(res)
	if !ok {
		return
	}
	b.Workgroup(group[0], group[1])
}

// Workgroup executes the 8x8 invocations of workgroup (gx, gy).
func (b *Bindings) Workgroup(gx, gy uint32) {
	for ly := range uint32(WorkgroupSize) {
		for lx := range uint32(WorkgroupSize) {
			b.invoke(gx*WorkgroupSize+lx, gy*WorkgroupSize+ly)
		}
	}
}

func (b *Bindings) cell(x, y uint32) uint32 {
	word := b.Current[y*b.BlockWidth+x/bitgrid.WordBits]
	return (word >> (x % bitgrid.WordBits)) & 1
}

func (b *Bindings) invoke(x, y uint32) {
	w, h := b.Width, b.Height
	if x >= w || y >= h {
		return
	}

	left := (x + w - 1) % w
	right := (x + 1) % w
	up := (y + h - 1) % h
	down := (y + 1) % h

	neighbors := b.cell(left, up) + b.cell(x, up) + b.cell(right, up) +
		b.cell(left, y) + b.cell(right, y) +
		b.cell(left, down) + b.cell(x, down) + b.cell(right, down)

	alive := b.cell(x, y)
	index := y*b.BlockWidth + x/bitgrid.WordBits
	mask := uint32(1) << (x % bitgrid.WordBits)

	if neighbors == 3 || (alive == 1 && neighbors == 2) {
		atomic.OrUint32(&b.Next[index], mask)
	} else {
		atomic.AndUint32(&b.Next[index], ^mask)
	}
}
