// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/gpucore"
)

// buffer is device memory. Contents are stored as 32-bit words so that
// kernels can update them atomically; the byte view is little-endian.
//
// words is written only by the queue goroutine. The host reads it only
// while the buffer is mapped, which happens after every submission that
// could touch it has completed.
type buffer struct {
	id    gpucore.BufferID
	label string
	size  uint64
	usage gputypes.BufferUsage
	words []uint32

	// Guarded by Device.mu.
	mapState  gpucore.MapState
	mapOffset uint64
	mapSize   uint64
	destroyed bool
}

func newBuffer(id gpucore.BufferID, desc *gpucore.BufferDesc) *buffer {
	return &buffer{
		id:    id,
		label: desc.Label,
		size:  desc.Size,
		usage: desc.Usage,
		words: make([]uint32, (desc.Size+3)/4),
	}
}

// wordRange returns the words covering [offset, offset+size).
// offset and size must be 4-byte aligned.
func (b *buffer) wordRange(offset, size uint64) []uint32 {
	return b.words[offset/4 : (offset+size)/4]
}

// write stores little-endian bytes at a 4-byte aligned offset.
func (b *buffer) write(offset uint64, data []byte) {
	dst := b.wordRange(offset, uint64(len(data)))
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
}

// read returns a little-endian copy of [offset, offset+size).
func (b *buffer) read(offset, size uint64) []byte {
	src := b.wordRange(offset, size)
	out := make([]byte, size)
	for i, w := range src {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func (b *buffer) String() string {
	if b.label != "" {
		return fmt.Sprintf("buffer %d (%s)", b.id, b.label)
	}
	return fmt.Sprintf("buffer %d", b.id)
}

// checkUsable validates that the queue may access b.
func (b *buffer) checkUsable() error {
	if b.destroyed {
		return fmt.Errorf("%s: %w", b, gpucore.ErrBufferDestroyed)
	}
	if b.mapState != gpucore.MapStateUnmapped {
		return fmt.Errorf("%s is %s: %w", b, b.mapState, gpucore.ErrBufferInUse)
	}
	return nil
}

// validateUsage checks WebGPU usage combination rules.
func validateUsage(usage gputypes.BufferUsage) error {
	if usage == 0 {
		return fmt.Errorf("%w: empty usage", gpucore.ErrUsageMismatch)
	}
	if usage.ContainsUnknownBits() {
		return fmt.Errorf("%w: unknown usage bits %#x", gpucore.ErrUsageMismatch, uint64(usage))
	}
	if usage.Contains(gputypes.BufferUsageMapRead) &&
		usage&^(gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst) != 0 {
		return fmt.Errorf("%w: MapRead may only be combined with CopyDst", gpucore.ErrUsageMismatch)
	}
	if usage.Contains(gputypes.BufferUsageMapWrite) &&
		usage&^(gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc) != 0 {
		return fmt.Errorf("%w: MapWrite may only be combined with CopySrc", gpucore.ErrUsageMismatch)
	}
	return nil
}
