// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/backend"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/internal/parallel"
)

func init() {
	backend.Register(backend.BackendSoftware, func() (gpucore.Device, error) {
		return New(), nil
	})
}

type shaderModule struct {
	label string
	wgsl  string
	spirv []uint32
}

type bindGroupLayout struct {
	label   string
	entries map[uint32]gputypes.BindGroupLayoutEntry
}

type pipelineLayout struct {
	groups []*bindGroupLayout
}

type pipeline struct {
	label  string
	layout *pipelineLayout
	entry  string
	kernel Kernel
}

type binding struct {
	buf    *buffer
	offset uint64
	size   uint64
	kind   gputypes.BufferBindingType
}

type bindGroup struct {
	label    string
	layout   *bindGroupLayout
	bindings map[uint32]binding
}

// Device is a CPU implementation of gpucore.Device.
type Device struct {
	// submitMu serializes queue insertion so submission indices match
	// channel order.
	submitMu sync.Mutex

	mu   sync.Mutex
	cond *sync.Cond

	nextID          uint64
	buffers         map[gpucore.BufferID]*buffer
	modules         map[gpucore.ShaderModuleID]*shaderModule
	bgLayouts       map[gpucore.BindGroupLayoutID]*bindGroupLayout
	pipelineLayouts map[gpucore.PipelineLayoutID]*pipelineLayout
	pipelines       map[gpucore.ComputePipelineID]*pipeline
	bindGroups      map[gpucore.BindGroupID]*bindGroup
	kernels         map[string]Kernel

	queue     chan *submission
	queueDone chan struct{}
	submitted uint64
	completed uint64
	maps      []*mapRequest
	lost      error
	destroyed bool

	pool *parallel.WorkerPool
}

var _ gpucore.Device = (*Device)(nil)

// New creates a software device and starts its queue.
func New(opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Device{
		buffers:         make(map[gpucore.BufferID]*buffer),
		modules:         make(map[gpucore.ShaderModuleID]*shaderModule),
		bgLayouts:       make(map[gpucore.BindGroupLayoutID]*bindGroupLayout),
		pipelineLayouts: make(map[gpucore.PipelineLayoutID]*pipelineLayout),
		pipelines:       make(map[gpucore.ComputePipelineID]*pipeline),
		bindGroups:      make(map[gpucore.BindGroupID]*bindGroup),
		kernels:         o.kernels,
		queue:           make(chan *submission, o.queueDepth),
		queueDone:       make(chan struct{}),
		pool:            parallel.NewWorkerPool(o.workers),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()

	slogger().Debug("software: device created",
		"workers", d.pool.Workers(),
		"queue_depth", o.queueDepth,
		"kernels", len(o.kernels))
	return d
}

// SetLogger sets the logger used by the software backend.
func (d *Device) SetLogger(l *slog.Logger) {
	SetLogger(l)
}

// AdapterInfo describes the software adapter.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: "gogpu/gol software",
		Type: gpucontext.AdapterTypeSoftware,
	}
}

// allocID returns a fresh resource ID. Caller must hold d.mu.
func (d *Device) allocID() uint64 {
	d.nextID++
	return d.nextID
}

// usable reports whether the device can still accept work. Caller must hold d.mu.
func (d *Device) usable() error {
	if d.destroyed {
		return gpucore.ErrDeviceDestroyed
	}
	if d.lost != nil {
		return d.lost
	}
	return nil
}

// CreateBuffer creates a zero-initialized buffer.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc == nil || desc.Size == 0 {
		return gpucore.InvalidID, gpucore.ErrInvalidBufferSize
	}
	if err := validateUsage(desc.Usage); err != nil {
		return gpucore.InvalidID, fmt.Errorf("software: create buffer %q: %w", desc.Label, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BufferID(d.allocID())
	d.buffers[id] = newBuffer(id, desc)

	slogger().Debug("software: buffer created",
		"label", desc.Label,
		"size", desc.Size,
		"usage", uint64(desc.Usage))
	return id, nil
}

// DestroyBuffer releases a buffer. A pending map request completes with
// MapStatusDestroyedBeforeCallback on the next Poll.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.buffers[id]; ok {
		b.destroyed = true
		delete(d.buffers, id)
	}
}

// lookupBuffer resolves a live buffer. Caller must hold d.mu.
func (d *Device) lookupBuffer(id gpucore.BufferID) (*buffer, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", gpucore.ErrUnknownResource, id)
	}
	return b, nil
}

// CreateShaderModule records a shader module. Sources are kept for entry
// point checks only; execution uses the registered kernels.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDesc) (gpucore.ShaderModuleID, error) {
	if desc == nil || (desc.WGSL == "" && len(desc.SPIRV) == 0) {
		return gpucore.InvalidID, fmt.Errorf("software: shader module has no source")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.ShaderModuleID(d.allocID())
	d.modules[id] = &shaderModule{label: desc.Label, wgsl: desc.WGSL, spirv: desc.SPIRV}
	return id, nil
}

// DestroyShaderModule releases a shader module.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.modules, id)
}

// CreateBindGroupLayout creates a bind group layout of buffer bindings.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make(map[uint32]gputypes.BindGroupLayoutEntry, len(desc.Entries))
	for _, e := range desc.Entries {
		if e.Buffer == nil {
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d", ErrUnsupportedBinding, e.Binding)
		}
		if _, dup := entries[e.Binding]; dup {
			return gpucore.InvalidID, fmt.Errorf("software: duplicate binding %d in layout %q", e.Binding, desc.Label)
		}
		entries[e.Binding] = e
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BindGroupLayoutID(d.allocID())
	d.bgLayouts[id] = &bindGroupLayout{label: desc.Label, entries: entries}
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bgLayouts, id)
}

// CreatePipelineLayout creates a pipeline layout.
func (d *Device) CreatePipelineLayout(desc *gpucore.PipelineLayoutDesc) (gpucore.PipelineLayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}

	pl := &pipelineLayout{groups: make([]*bindGroupLayout, len(desc.BindGroupLayouts))}
	for i, lid := range desc.BindGroupLayouts {
		l, ok := d.bgLayouts[lid]
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("%w: bind group layout %d", gpucore.ErrUnknownResource, lid)
		}
		pl.groups[i] = l
	}
	id := gpucore.PipelineLayoutID(d.allocID())
	d.pipelineLayouts[id] = pl
	return id, nil
}

// DestroyPipelineLayout releases a pipeline layout.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pipelineLayouts, id)
}

// CreateComputePipeline binds a pipeline to the CPU kernel registered for
// its entry point.
func (d *Device) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}

	layout, ok := d.pipelineLayouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: pipeline layout %d", gpucore.ErrUnknownResource, desc.Layout)
	}
	module, ok := d.modules[desc.Module]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: shader module %d", gpucore.ErrUnknownResource, desc.Module)
	}
	if module.wgsl != "" && !strings.Contains(module.wgsl, "fn "+desc.EntryPoint+"(") {
		return gpucore.InvalidID, fmt.Errorf("software: shader module %q has no entry point %q", module.label, desc.EntryPoint)
	}
	k, ok := d.kernels[desc.EntryPoint]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrUnknownEntryPoint, desc.EntryPoint)
	}

	id := gpucore.ComputePipelineID(d.allocID())
	d.pipelines[id] = &pipeline{label: desc.Label, layout: layout, entry: desc.EntryPoint, kernel: k}

	slogger().Debug("software: pipeline created",
		"label", desc.Label,
		"entry_point", desc.EntryPoint,
		"groups", len(layout.groups))
	return id, nil
}

// DestroyComputePipeline releases a compute pipeline.
func (d *Device) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pipelines, id)
}

// CreateBindGroup creates a bind group. Every binding of the layout must be
// provided with a buffer whose usage matches the binding type.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return gpucore.InvalidID, err
	}

	layout, ok := d.bgLayouts[desc.Layout]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: bind group layout %d", gpucore.ErrUnknownResource, desc.Layout)
	}
	if len(desc.Entries) != len(layout.entries) {
		return gpucore.InvalidID, fmt.Errorf("%w: %d entries for %d bindings",
			ErrBindingMismatch, len(desc.Entries), len(layout.entries))
	}

	bindings := make(map[uint32]binding, len(desc.Entries))
	for _, e := range desc.Entries {
		le, ok := layout.entries[e.Binding]
		if !ok {
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d not in layout", ErrBindingMismatch, e.Binding)
		}
		if _, dup := bindings[e.Binding]; dup {
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d given twice", ErrBindingMismatch, e.Binding)
		}
		b, err := d.lookupBuffer(e.Buffer)
		if err != nil {
			return gpucore.InvalidID, err
		}

		need := gputypes.BufferUsageStorage
		if le.Buffer.Type == gputypes.BufferBindingTypeUniform {
			need = gputypes.BufferUsageUniform
		}
		if !b.usage.Contains(need) {
			return gpucore.InvalidID, fmt.Errorf("%w: %s bound as %s", gpucore.ErrUsageMismatch, b, le.Buffer.Type)
		}

		size := e.Size
		if size == 0 {
			size = b.size - min(e.Offset, b.size)
		}
		if e.Offset%gpucore.CopyAlignment != 0 || size%gpucore.CopyAlignment != 0 || e.Offset+size > b.size || size == 0 {
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d range [%d, %d) of %s",
				ErrBindingMismatch, e.Binding, e.Offset, e.Offset+size, b)
		}
		if size < le.Buffer.MinBindingSize {
			return gpucore.InvalidID, fmt.Errorf("%w: binding %d is %d bytes, layout requires %d",
				ErrBindingMismatch, e.Binding, size, le.Buffer.MinBindingSize)
		}
		bindings[e.Binding] = binding{buf: b, offset: e.Offset, size: size, kind: le.Buffer.Type}
	}

	id := gpucore.BindGroupID(d.allocID())
	d.bindGroups[id] = &bindGroup{label: desc.Label, layout: layout, bindings: bindings}
	return id, nil
}

// DestroyBindGroup releases a bind group.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bindGroups, id)
}

// CreateCommandEncoder begins recording a command buffer.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	return &commandEncoder{dev: d, label: label, buffers: make(map[*buffer]struct{})}, nil
}
