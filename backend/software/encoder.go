// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/gpucore"
)

// commandEncoder records queue operations. Resources are resolved while
// recording, so later destruction of an ID does not affect the recording.
type commandEncoder struct {
	dev      *Device
	label    string
	ops      []func() error
	buffers  map[*buffer]struct{}
	err      error
	passOpen bool
	finished bool
}

// fail records the first recording error.
func (e *commandEncoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *commandEncoder) recordable() bool {
	switch {
	case e.finished:
		e.fail(gpucore.ErrEncoderFinished)
	case e.passOpen:
		e.fail(gpucore.ErrPassOpen)
	}
	return e.err == nil
}

// BeginComputePass starts a compute pass.
func (e *commandEncoder) BeginComputePass(label string) (gpucore.ComputePassEncoder, error) {
	if !e.recordable() {
		return nil, e.err
	}
	e.passOpen = true
	return &computePass{enc: e, label: label}, nil
}

// CopyBufferToBuffer records a copy between two distinct buffers.
func (e *commandEncoder) CopyBufferToBuffer(src gpucore.BufferID, srcOffset uint64, dst gpucore.BufferID, dstOffset uint64, size uint64) {
	if !e.recordable() {
		return
	}

	e.dev.mu.Lock()
	s, serr := e.dev.lookupBuffer(src)
	t, terr := e.dev.lookupBuffer(dst)
	e.dev.mu.Unlock()
	switch {
	case serr != nil:
		e.fail(serr)
		return
	case terr != nil:
		e.fail(terr)
		return
	case s == t:
		e.fail(fmt.Errorf("%w: source and destination are %s", gpucore.ErrCopyRange, s))
		return
	case !s.usage.Contains(gputypes.BufferUsageCopySrc):
		e.fail(fmt.Errorf("%w: %s has no CopySrc usage", gpucore.ErrUsageMismatch, s))
		return
	case !t.usage.Contains(gputypes.BufferUsageCopyDst):
		e.fail(fmt.Errorf("%w: %s has no CopyDst usage", gpucore.ErrUsageMismatch, t))
		return
	}
	if err := gpucore.CheckCopy(srcOffset, s.size, dstOffset, t.size, size); err != nil {
		e.fail(fmt.Errorf("software: copy %s -> %s: %w", s, t, err))
		return
	}

	e.buffers[s] = struct{}{}
	e.buffers[t] = struct{}{}
	e.ops = append(e.ops, func() error {
		copy(t.wordRange(dstOffset, size), s.wordRange(srcOffset, size))
		return nil
	})
}

// Finish ends recording.
func (e *commandEncoder) Finish() (gpucore.CommandBuffer, error) {
	if e.passOpen {
		e.fail(gpucore.ErrPassOpen)
	}
	if e.finished {
		e.fail(gpucore.ErrEncoderFinished)
	}
	e.finished = true
	if e.err != nil {
		return nil, fmt.Errorf("software: encoder %q: %w", e.label, e.err)
	}
	return &commandBuffer{dev: e.dev, label: e.label, ops: e.ops, buffers: e.buffers}, nil
}

// commandBuffer is a finished recording.
type commandBuffer struct {
	dev       *Device
	label     string
	ops       []func() error
	buffers   map[*buffer]struct{}
	submitted atomic.Bool
}

// Release discards the recording.
func (c *commandBuffer) Release() {
	c.submitted.Store(true)
	c.ops = nil
}

// computePass records dispatches into its encoder.
type computePass struct {
	enc      *commandEncoder
	label    string
	pipeline *pipeline
	groups   map[uint32]*bindGroup
	ended    bool
}

// SetPipeline sets the active compute pipeline.
func (p *computePass) SetPipeline(id gpucore.ComputePipelineID) {
	p.enc.dev.mu.Lock()
	pl, ok := p.enc.dev.pipelines[id]
	p.enc.dev.mu.Unlock()
	if !ok {
		p.enc.fail(fmt.Errorf("%w: compute pipeline %d", gpucore.ErrUnknownResource, id))
		return
	}
	p.pipeline = pl
}

// SetBindGroup sets the bind group at index.
func (p *computePass) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	p.enc.dev.mu.Lock()
	bg, ok := p.enc.dev.bindGroups[id]
	p.enc.dev.mu.Unlock()
	if !ok {
		p.enc.fail(fmt.Errorf("%w: bind group %d", gpucore.ErrUnknownResource, id))
		return
	}
	if p.groups == nil {
		p.groups = make(map[uint32]*bindGroup)
	}
	p.groups[index] = bg
}

// Dispatch records a dispatch of x*y*z workgroups.
func (p *computePass) Dispatch(x, y, z uint32) {
	if p.ended || p.enc.err != nil {
		return
	}
	if p.pipeline == nil {
		p.enc.fail(gpucore.ErrNoPipeline)
		return
	}
	for i, want := range p.pipeline.layout.groups {
		bg, ok := p.groups[uint32(i)]
		if !ok {
			p.enc.fail(fmt.Errorf("%w: index %d", gpucore.ErrMissingBindGroup, i))
			return
		}
		if bg.layout != want {
			p.enc.fail(fmt.Errorf("%w: bind group %q at index %d has a different layout",
				ErrBindingMismatch, bg.label, i))
			return
		}
	}
	if err := checkAliasing(p.groups); err != nil {
		p.enc.fail(err)
		return
	}
	if x == 0 || y == 0 || z == 0 {
		return
	}

	for _, g := range p.groups {
		for _, b := range g.bindings {
			p.enc.buffers[b.buf] = struct{}{}
		}
	}

	k := p.pipeline.kernel
	entry := p.pipeline.entry
	var slots map[uint32]binding
	if g0, ok := p.groups[0]; ok {
		slots = g0.bindings
	}
	pool := p.enc.dev.pool
	p.enc.ops = append(p.enc.ops, func() error {
		res := make(map[uint32][]uint32, len(slots))
		for idx, b := range slots {
			res[idx] = b.buf.wordRange(b.offset, b.size)
		}
		return runDispatch(pool.Range, entry, k, res, x, y, z)
	})
}

// End finishes the pass.
func (p *computePass) End() error {
	if p.ended {
		return fmt.Errorf("software: compute pass %q already ended", p.label)
	}
	p.ended = true
	p.enc.passOpen = false
	return p.enc.err
}

// checkAliasing rejects dispatches where a writable storage range overlaps
// any other bound range.
func checkAliasing(groups map[uint32]*bindGroup) error {
	var all []binding
	for _, g := range groups {
		for _, b := range g.bindings {
			all = append(all, b)
		}
	}
	for i, a := range all {
		if a.kind != gputypes.BufferBindingTypeStorage {
			continue
		}
		for j, b := range all {
			if i == j || a.buf != b.buf {
				continue
			}
			if a.offset < b.offset+b.size && b.offset < a.offset+a.size {
				return fmt.Errorf("%w: %s", ErrStorageAliasing, a.buf)
			}
		}
	}
	return nil
}

// runDispatch executes every workgroup, one row of x per parallel task.
// A panicking kernel is reported as ErrKernelFault.
func runDispatch(parallelRange func(int, func(int)), entry string, k Kernel, res map[uint32][]uint32, x, y, z uint32) error {
	var fault atomic.Pointer[error]
	parallelRange(int(y*z), func(row int) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("%w: %s: %v\n%s", ErrKernelFault, entry, r, debug.Stack())
				fault.CompareAndSwap(nil, &err)
			}
		}()
		gy := uint32(row) % y
		gz := uint32(row) / y
		for gx := range x {
			if fault.Load() != nil {
				return
			}
			k([3]uint32{gx, gy, gz}, res)
		}
	})
	if errp := fault.Load(); errp != nil {
		return *errp
	}
	return nil
}
