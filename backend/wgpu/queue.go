// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/gol/gpucore"
)

// WriteBuffer schedules a write through the queue's staging path.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	buf, err := d.lookupBuffer(id)
	if err != nil {
		return err
	}
	if err := gpucore.CheckCopy(0, uint64(len(data)), offset, buf.Size(), uint64(len(data))); err != nil {
		return fmt.Errorf("wgpu: write %d bytes at %d: %w", len(data), offset, err)
	}
	if err := d.queue.WriteBuffer(buf, offset, data); err != nil {
		return fmt.Errorf("wgpu: write buffer %d: %w", id, err)
	}
	return nil
}

// Submit submits command buffers. They are released once the queue
// reports completion of their submission.
func (d *Device) Submit(cmds ...gpucore.CommandBuffer) error {
	raw := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		cb, ok := c.(*commandBuffer)
		if !ok || cb.dev != d || cb.raw == nil {
			return ErrForeignCommandBuffer
		}
		raw = append(raw, cb.raw)
	}

	d.mu.Lock()
	if err := d.usable(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	index, err := d.queue.Submit(raw...)
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	for _, c := range cmds {
		c.(*commandBuffer).raw = nil
	}

	d.mu.Lock()
	d.submitted = append(d.submitted, inflight{index: index, cbs: raw})
	d.mu.Unlock()
	return nil
}

// Poll drives gogpu/wgpu map triage and delivers resolved map callbacks.
func (d *Device) Poll(wait bool) bool {
	mode := wgpu.PollPoll
	if wait {
		mode = wgpu.PollWait
	}
	d.device.Poll(mode)
	completed := d.queue.Poll()

	type delivery struct {
		cb     func(gpucore.MapStatus)
		status gpucore.MapStatus
	}
	var due []delivery

	d.mu.Lock()
	for id, m := range d.maps {
		ready, err := m.pending.Status()
		if !ready {
			continue
		}
		delete(d.maps, id)
		due = append(due, delivery{m.callback, mapStatus(err)})
	}

	kept := d.submitted[:0]
	for _, f := range d.submitted {
		if wait || f.index <= completed {
			for _, cb := range f.cbs {
				cb.Release()
			}
			continue
		}
		kept = append(kept, f)
	}
	clear(d.submitted[len(kept):])
	d.submitted = kept
	idle := len(d.submitted) == 0
	d.mu.Unlock()

	for _, m := range due {
		m.cb(m.status)
	}
	return idle
}

// MapAsync requests a read mapping. The callback fires from Poll.
func (d *Device) MapAsync(id gpucore.BufferID, mode gputypes.MapMode, offset, size uint64, callback func(gpucore.MapStatus)) error {
	if callback == nil {
		return gpucore.ErrCallbackNil
	}
	if mode != gputypes.MapModeRead {
		callback(gpucore.MapStatusValidationError)
		return fmt.Errorf("%w: map mode %d", gpucore.ErrUsageMismatch, mode)
	}
	buf, err := d.lookupBuffer(id)
	if err != nil {
		callback(gpucore.MapStatusValidationError)
		return err
	}

	d.mu.Lock()
	_, busy := d.maps[id]
	d.mu.Unlock()
	if busy {
		callback(gpucore.MapStatusMappingAlreadyPending)
		return fmt.Errorf("buffer %d: %w", id, gpucore.ErrBufferAlreadyMapped)
	}

	pending, err := buf.MapAsync(wgpu.MapModeRead, offset, size)
	if err != nil {
		callback(mapStatus(err))
		return fmt.Errorf("wgpu: map buffer %d: %w", id, mapError(err))
	}

	d.mu.Lock()
	d.maps[id] = &pendingMap{pending: pending, callback: callback}
	d.mu.Unlock()
	return nil
}

// MappedRange copies bytes out of a mapped buffer.
func (d *Device) MappedRange(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	buf, err := d.lookupBuffer(id)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	_, pending := d.maps[id]
	d.mu.Unlock()
	if pending {
		return nil, fmt.Errorf("buffer %d: %w", id, gpucore.ErrBufferMapPending)
	}

	rng, err := buf.MappedRange(offset, size)
	if err != nil {
		if buf.MapState() != wgpu.MapStateMapped {
			return nil, fmt.Errorf("buffer %d: %w: %w", id, gpucore.ErrBufferNotMapped, err)
		}
		return nil, fmt.Errorf("buffer %d: %w: %w", id, gpucore.ErrInvalidMapRange, err)
	}
	defer rng.Release()
	return append([]byte(nil), rng.Bytes()...), nil
}

// Unmap releases a mapping or cancels a pending one.
func (d *Device) Unmap(id gpucore.BufferID) error {
	buf, err := d.lookupBuffer(id)
	if err != nil {
		return err
	}

	d.mu.Lock()
	m := d.maps[id]
	delete(d.maps, id)
	d.mu.Unlock()

	if m == nil && buf.MapState() == wgpu.MapStateUnmapped {
		return fmt.Errorf("buffer %d: %w", id, gpucore.ErrBufferNotMapped)
	}
	if err := buf.Unmap(); err != nil {
		return fmt.Errorf("wgpu: unmap buffer %d: %w", id, err)
	}
	if m != nil {
		m.pending.Release()
		m.callback(gpucore.MapStatusUnmappedBeforeCallback)
	}
	return nil
}
