// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/gpucore"
)

// submission is one unit of queue work.
type submission struct {
	index uint64
	label string
	ops   []func() error
}

// mapRequest is a map awaiting completion of the submissions before it.
type mapRequest struct {
	buf      *buffer
	after    uint64
	callback func(gpucore.MapStatus)
}

// run executes submissions in order until the queue is closed.
func (d *Device) run() {
	defer close(d.queueDone)

	for sub := range d.queue {
		d.mu.Lock()
		lost := d.lost
		d.mu.Unlock()

		var err error
		if lost == nil {
			for _, op := range sub.ops {
				if err = op(); err != nil {
					break
				}
			}
		}

		d.mu.Lock()
		if err != nil && d.lost == nil {
			d.lost = fmt.Errorf("%w: submission %d (%s): %w", gpucore.ErrDeviceLost, sub.index, sub.label, err)
			slogger().Error("software: device lost", "submission", sub.index, "err", err)
		}
		d.completed = sub.index
		d.cond.Broadcast()
		d.mu.Unlock()
	}
}

// enqueue appends a submission to the queue. Buffers in use are validated
// under the same lock that assigns the submission index.
func (d *Device) enqueue(label string, ops []func() error, used map[*buffer]struct{}) error {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()

	d.mu.Lock()
	if err := d.usable(); err != nil {
		d.mu.Unlock()
		return err
	}
	for b := range used {
		if err := b.checkUsable(); err != nil {
			d.mu.Unlock()
			return err
		}
	}
	d.submitted++
	sub := &submission{index: d.submitted, label: label, ops: ops}
	d.mu.Unlock()

	d.queue <- sub
	return nil
}

// Submit enqueues command buffers for asynchronous execution.
func (d *Device) Submit(cmds ...gpucore.CommandBuffer) error {
	for _, c := range cmds {
		cb, ok := c.(*commandBuffer)
		if !ok || cb.dev != d {
			return ErrForeignCommandBuffer
		}
		if !cb.submitted.CompareAndSwap(false, true) {
			return ErrCommandBufferSubmitted
		}
		if err := d.enqueue(cb.label, cb.ops, cb.buffers); err != nil {
			return err
		}
	}
	return nil
}

// WriteBuffer schedules a host-to-buffer write on the queue.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	b, err := d.lookupBuffer(id)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if !b.usage.Contains(gputypes.BufferUsageCopyDst) {
		return fmt.Errorf("%w: %s has no CopyDst usage", gpucore.ErrUsageMismatch, b)
	}
	if err := gpucore.CheckCopy(0, uint64(len(data)), offset, b.size, uint64(len(data))); err != nil {
		return fmt.Errorf("software: write %d bytes at %d into %s: %w", len(data), offset, b, err)
	}

	staged := append([]byte(nil), data...)
	op := func() error {
		b.write(offset, staged)
		return nil
	}
	return d.enqueue("write "+b.label, []func() error{op}, map[*buffer]struct{}{b: {}})
}

// Poll delivers due map callbacks. With wait set it first blocks until
// every submission has executed.
func (d *Device) Poll(wait bool) bool {
	d.mu.Lock()
	if wait {
		for d.completed < d.submitted {
			d.cond.Wait()
		}
	}

	type delivery struct {
		cb     func(gpucore.MapStatus)
		status gpucore.MapStatus
	}
	var due []delivery
	kept := d.maps[:0]
	for _, r := range d.maps {
		switch {
		case r.buf.destroyed:
			r.buf.mapState = gpucore.MapStateUnmapped
			due = append(due, delivery{r.callback, gpucore.MapStatusDestroyedBeforeCallback})
		case r.after > d.completed:
			kept = append(kept, r)
		case d.lost != nil:
			r.buf.mapState = gpucore.MapStateUnmapped
			due = append(due, delivery{r.callback, gpucore.MapStatusDeviceLost})
		default:
			r.buf.mapState = gpucore.MapStateMapped
			due = append(due, delivery{r.callback, gpucore.MapStatusSuccess})
		}
	}
	clear(d.maps[len(kept):])
	d.maps = kept
	idle := d.completed == d.submitted
	d.mu.Unlock()

	for _, m := range due {
		m.cb(m.status)
	}
	return idle
}

// MapAsync requests a read mapping of [offset, offset+size).
func (d *Device) MapAsync(id gpucore.BufferID, mode gputypes.MapMode, offset, size uint64, callback func(gpucore.MapStatus)) error {
	if callback == nil {
		return gpucore.ErrCallbackNil
	}

	fail := func(status gpucore.MapStatus, err error) error {
		callback(status)
		return err
	}

	d.mu.Lock()
	b, err := d.lookupBuffer(id)
	if err != nil {
		d.mu.Unlock()
		return fail(gpucore.MapStatusValidationError, err)
	}
	if b.mapState != gpucore.MapStateUnmapped {
		d.mu.Unlock()
		return fail(gpucore.MapStatusMappingAlreadyPending,
			fmt.Errorf("%s is %s: %w", b, b.mapState, gpucore.ErrBufferAlreadyMapped))
	}
	if mode != gputypes.MapModeRead || !b.usage.Contains(gputypes.BufferUsageMapRead) {
		d.mu.Unlock()
		return fail(gpucore.MapStatusValidationError,
			fmt.Errorf("%w: %s cannot be mapped for mode %d", gpucore.ErrUsageMismatch, b, mode))
	}
	if offset%gpucore.MapAlignment != 0 || size%gpucore.CopyAlignment != 0 {
		d.mu.Unlock()
		return fail(gpucore.MapStatusOffsetOutOfRange,
			fmt.Errorf("%w: offset %d size %d", gpucore.ErrInvalidMapRange, offset, size))
	}
	if offset > b.size || size > b.size-offset {
		d.mu.Unlock()
		return fail(gpucore.MapStatusSizeOutOfRange,
			fmt.Errorf("%w: [%d, %d) of %d bytes", gpucore.ErrInvalidMapRange, offset, offset+size, b.size))
	}

	b.mapState = gpucore.MapStatePending
	b.mapOffset = offset
	b.mapSize = size
	d.maps = append(d.maps, &mapRequest{buf: b, after: d.submitted, callback: callback})
	d.mu.Unlock()
	return nil
}

// MappedRange returns a copy of a sub-range of the mapped region.
func (d *Device) MappedRange(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.lookupBuffer(id)
	if err != nil {
		return nil, err
	}
	switch b.mapState {
	case gpucore.MapStateMapped:
	case gpucore.MapStatePending:
		return nil, fmt.Errorf("%s: %w", b, gpucore.ErrBufferMapPending)
	default:
		return nil, fmt.Errorf("%s: %w", b, gpucore.ErrBufferNotMapped)
	}
	if offset%gpucore.MapAlignment != 0 || size%gpucore.CopyAlignment != 0 ||
		offset < b.mapOffset || offset+size > b.mapOffset+b.mapSize {
		return nil, fmt.Errorf("%w: [%d, %d) outside mapped [%d, %d)",
			gpucore.ErrInvalidMapRange, offset, offset+size, b.mapOffset, b.mapOffset+b.mapSize)
	}
	return b.read(offset, size), nil
}

// Unmap releases a mapping or cancels a pending one.
func (d *Device) Unmap(id gpucore.BufferID) error {
	d.mu.Lock()
	b, err := d.lookupBuffer(id)
	if err != nil {
		d.mu.Unlock()
		return err
	}

	var canceled func(gpucore.MapStatus)
	switch b.mapState {
	case gpucore.MapStateMapped:
	case gpucore.MapStatePending:
		for i, r := range d.maps {
			if r.buf == b {
				canceled = r.callback
				d.maps = append(d.maps[:i], d.maps[i+1:]...)
				break
			}
		}
	default:
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", b, gpucore.ErrBufferNotMapped)
	}
	b.mapState = gpucore.MapStateUnmapped
	b.mapOffset, b.mapSize = 0, 0
	d.mu.Unlock()

	if canceled != nil {
		canceled(gpucore.MapStatusUnmappedBeforeCallback)
	}
	return nil
}

// LoseDevice marks the device as lost. Queued submissions are skipped,
// pending maps fail with MapStatusDeviceLost and later calls return an
// error wrapping gpucore.ErrDeviceLost.
func (d *Device) LoseDevice(reason error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost != nil {
		return
	}
	if reason == nil {
		reason = errors.New("lost by request")
	}
	d.lost = fmt.Errorf("%w: %w", gpucore.ErrDeviceLost, reason)
	slogger().Warn("software: device lost", "reason", reason)
}

// Err returns the reason the device was lost, or nil.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

// Destroy drains the queue and releases the device. Pending maps fail with
// MapStatusDestroyedBeforeCallback. Destroy is safe to call multiple times.
func (d *Device) Destroy() {
	d.submitMu.Lock()
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		d.submitMu.Unlock()
		return
	}
	d.destroyed = true
	d.mu.Unlock()
	close(d.queue)
	d.submitMu.Unlock()

	<-d.queueDone
	d.pool.Close()

	d.mu.Lock()
	pending := d.maps
	d.maps = nil
	for _, r := range pending {
		r.buf.mapState = gpucore.MapStateUnmapped
	}
	clear(d.buffers)
	clear(d.modules)
	clear(d.bgLayouts)
	clear(d.pipelineLayouts)
	clear(d.pipelines)
	clear(d.bindGroups)
	d.mu.Unlock()

	for _, r := range pending {
		r.callback(gpucore.MapStatusDestroyedBeforeCallback)
	}
	slogger().Debug("software: device destroyed")
}
