// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/bitgrid"
)

// WorkgroupSize is the tile width: each workgroup updates an
// 8x8 block of cells. Grid sizes must be a multiple of it.
const WorkgroupSize = 8

// Binding indices in bind group 0.
const (
	BindingGridSize  uint32 = 0
	BindingCurrent   uint32 = 1
	BindingNext      uint32 = 2
	BindingBlockSize uint32 = 3
)

// UniformSize is the size in bytes of each of the two uniform buffers.
const UniformSize = 8

// ErrGridSize is returned for a grid size that is zero or not a multiple
// of WorkgroupSize.
var ErrGridSize = errors.New("kernel: grid size must be a positive multiple of the workgroup size")

// CheckGridSize validates a logical grid size.
func CheckGridSize(size uint32) error {
	if size == 0 || size%WorkgroupSize != 0 {
		return fmt.Errorf("%w: %d is not divisible by %d", ErrGridSize, size, WorkgroupSize)
	}
	return nil
}

// WorkgroupCount returns the dispatch dimensions covering a size x size
// grid with no partial workgroups.
func WorkgroupCount(size uint32) (x, y, z uint32, err error) {
	if err := CheckGridSize(size); err != nil {
		return 0, 0, 0, err
	}
	n := size / WorkgroupSize
	return n, n, 1, nil
}

// LayoutEntries returns the bind group layout shared by both generation
// orderings.
func LayoutEntries() []gputypes.BindGroupLayoutEntry {
	uniform := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: UniformSize,
			},
		}
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	return []gputypes.BindGroupLayoutEntry{
		uniform(BindingGridSize),
		storageRO(BindingCurrent),
		storageRW(BindingNext),
		uniform(BindingBlockSize),
	}
}

// GridSizeUniform encodes the logical grid size as vec2<f32>.
func GridSizeUniform(size uint32) []byte {
	buf := make([]byte, UniformSize)
	bits := math.Float32bits(float32(size))
	binary.LittleEndian.PutUint32(buf[0:], bits)
	binary.LittleEndian.PutUint32(buf[4:], bits)
	return buf
}

// BlockSizeUniform encodes the packed grid size as vec2<u32>.
func BlockSizeUniform(l bitgrid.Layout) []byte {
	buf := make([]byte, UniformSize)
	binary.LittleEndian.PutUint32(buf[0:], l.BlockWidth)
	binary.LittleEndian.PutUint32(buf[4:], l.BlockHeight)
	return buf
}
