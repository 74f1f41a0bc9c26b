// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/gol/gpucore"
)

// CreateCommandEncoder begins recording a command buffer.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: d.objLabel(label)})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder %q: %w", label, err)
	}
	return &commandEncoder{dev: d, raw: enc, label: label}, nil
}

type commandEncoder struct {
	dev      *Device
	raw      *wgpu.CommandEncoder
	label    string
	err      error
	passOpen bool
	finished bool
}

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

func (e *commandEncoder) BeginComputePass(label string) (gpucore.ComputePassEncoder, error) {
	if !e.recordable() {
		return nil, e.err
	}
	pass, err := e.raw.BeginComputePass(&wgpu.ComputePassDescriptor{Label: e.dev.objLabel(label)})
	if err != nil {
		e.fail(err)
		return nil, fmt.Errorf("wgpu: begin compute pass %q: %w", label, err)
	}
	e.passOpen = true
	return &computePass{enc: e, raw: pass, label: label}, nil
}

func (e *commandEncoder) CopyBufferToBuffer(src gpucore.BufferID, srcOffset uint64, dst gpucore.BufferID, dstOffset uint64, size uint64) {
	if !e.recordable() {
		return
	}
	s, err := e.dev.lookupBuffer(src)
	if err != nil {
		e.fail(err)
		return
	}
	t, err := e.dev.lookupBuffer(dst)
	if err != nil {
		e.fail(err)
		return
	}
	if src == dst {
		e.fail(fmt.Errorf("%w: source and destination are buffer %d", gpucore.ErrCopyRange, src))
		return
	}
	if err := gpucore.CheckCopy(srcOffset, s.Size(), dstOffset, t.Size(), size); err != nil {
		e.fail(err)
		return
	}
	e.raw.CopyBufferToBuffer(s, srcOffset, t, dstOffset, size)
}

func (e *commandEncoder) Finish() (gpucore.CommandBuffer, error) {
	if e.passOpen {
		e.fail(gpucore.ErrPassOpen)
	}
	if e.finished {
		e.fail(gpucore.ErrEncoderFinished)
		return nil, fmt.Errorf("wgpu: encoder %q: %w", e.label, e.err)
	}
	e.finished = true
	if e.err != nil {
		e.raw.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: encoder %q: %w", e.label, e.err)
	}
	cb, err := e.raw.Finish()
	if err != nil {
		return nil, fmt.Errorf("wgpu: finish encoder %q: %w", e.label, err)
	}
	return &commandBuffer{dev: e.dev, raw: cb}, nil
}

type commandBuffer struct {
	dev *Device
	raw *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() {
	if c.raw != nil {
		c.raw.Release()
		c.raw = nil
	}
}

type computePass struct {
	enc   *commandEncoder
	raw   *wgpu.ComputePassEncoder
	label string
	ended bool
}

func (p *computePass) SetPipeline(id gpucore.ComputePipelineID) {
	p.enc.dev.mu.Lock()
	pl, ok := p.enc.dev.pipelines[id]
	p.enc.dev.mu.Unlock()
	if !ok {
		p.enc.fail(fmt.Errorf("%w: compute pipeline %d", gpucore.ErrUnknownResource, id))
		return
	}
	p.raw.SetPipeline(pl)
}

func (p *computePass) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	p.enc.dev.mu.Lock()
	bg, ok := p.enc.dev.bindGroups[id]
	p.enc.dev.mu.Unlock()
	if !ok {
		p.enc.fail(fmt.Errorf("%w: bind group %d", gpucore.ErrUnknownResource, id))
		return
	}
	p.raw.SetBindGroup(index, bg, nil)
}

func (p *computePass) Dispatch(x, y, z uint32) {
	if p.ended || p.enc.err != nil {
		return
	}
	p.raw.Dispatch(x, y, z)
}

func (p *computePass) End() error {
	if p.ended {
		return fmt.Errorf("wgpu: compute pass %q already ended", p.label)
	}
	p.ended = true
	p.enc.passOpen = false
	if err := p.raw.End(); err != nil {
		p.enc.fail(err)
	}
	return p.enc.err
}
