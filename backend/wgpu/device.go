// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/gol/backend"
	"github.com/gogpu/gol/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func() (gpucore.Device, error) {
		return Open()
	})
}

// Option configures adapter selection in Open.
type Option func(*options)

type options struct {
	power    gputypes.PowerPreference
	fallback bool
	label    string
}

// WithPowerPreference selects between low-power and high-performance adapters.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(o *options) { o.power = p }
}

// WithForceFallbackAdapter requests the software adapter of gogpu/wgpu.
func WithForceFallbackAdapter(force bool) Option {
	return func(o *options) { o.fallback = force }
}

// WithLabel sets the debug label prefix used for device objects.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

type pendingMap struct {
	pending  *wgpu.MapPending
	callback func(gpucore.MapStatus)
}

type inflight struct {
	index uint64
	cbs   []*wgpu.CommandBuffer
}

// Device is a gpucore.Device backed by gogpu/wgpu.
type Device struct {
	mu sync.Mutex

	// instance and adapter are nil when the device is borrowed from a
	// DeviceProvider; borrowed devices are not released by Destroy.
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	owned    bool
	info     gpucontext.AdapterInfo
	label    string

	nextID          uint64
	buffers         map[gpucore.BufferID]*wgpu.Buffer
	modules         map[gpucore.ShaderModuleID]*wgpu.ShaderModule
	bgLayouts       map[gpucore.BindGroupLayoutID]*wgpu.BindGroupLayout
	pipelineLayouts map[gpucore.PipelineLayoutID]*wgpu.PipelineLayout
	pipelines       map[gpucore.ComputePipelineID]*wgpu.ComputePipeline
	bindGroups      map[gpucore.BindGroupID]*wgpu.BindGroup

	maps      map[gpucore.BufferID]*pendingMap
	submitted []inflight
	destroyed bool
}

var _ gpucore.Device = (*Device)(nil)

func newDevice(dev *wgpu.Device, queue *wgpu.Queue, info gpucontext.AdapterInfo, label string) *Device {
	return &Device{
		device:          dev,
		queue:           queue,
		info:            info,
		label:           label,
		buffers:         make(map[gpucore.BufferID]*wgpu.Buffer),
		modules:         make(map[gpucore.ShaderModuleID]*wgpu.ShaderModule),
		bgLayouts:       make(map[gpucore.BindGroupLayoutID]*wgpu.BindGroupLayout),
		pipelineLayouts: make(map[gpucore.PipelineLayoutID]*wgpu.PipelineLayout),
		pipelines:       make(map[gpucore.ComputePipelineID]*wgpu.ComputePipeline),
		bindGroups:      make(map[gpucore.BindGroupID]*wgpu.BindGroup),
		maps:            make(map[gpucore.BufferID]*pendingMap),
	}
}

// Open creates an instance, requests an adapter and opens a device on it.
func Open(opts ...Option) (*Device, error) {
	o := options{power: gputypes.PowerPreferenceHighPerformance, label: "gol"}
	for _, opt := range opts {
		opt(&o)
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      o.power,
		ForceFallbackAdapter: o.fallback,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}

	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}

	ai := adapter.Info()
	d := newDevice(dev, dev.Queue(), gpucontext.AdapterInfo{
		Name: ai.Name,
		Type: adapterType(ai.DeviceType),
	}, o.label)
	d.instance = instance
	d.adapter = adapter
	d.owned = true

	slogger().Info("wgpu: device opened",
		"adapter", ai.Name,
		"type", ai.DeviceType.String(),
		"backend", ai.Backend.String(),
		"driver", ai.Driver)
	return d, nil
}

// NewFromProvider wraps the device of a host GPU context. The provider
// keeps ownership; Destroy releases only the resources created here.
func NewFromProvider(p gpucontext.DeviceProvider) (*Device, error) {
	if p == nil {
		return nil, ErrProviderType
	}
	dev, ok := p.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: device is %T", ErrProviderType, p.Device())
	}
	queue, ok := p.Queue().(*wgpu.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: queue is %T", ErrProviderType, p.Queue())
	}

	d := newDevice(dev, queue, p.AdapterInfo(), "gol")
	slogger().Debug("wgpu: device borrowed from provider",
		"adapter", d.info.Name,
		"type", d.info.Type.String())
	return d, nil
}

// SetLogger sets the logger for this backend and gogpu/wgpu.
func (d *Device) SetLogger(l *slog.Logger) {
	SetLogger(l)
}

// AdapterInfo describes the adapter backing the device.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return d.info
}

// Raw returns the underlying gogpu/wgpu device and queue.
func (d *Device) Raw() (*wgpu.Device, *wgpu.Queue) {
	return d.device, d.queue
}

func (d *Device) allocID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Device) objLabel(label string) string {
	if label == "" {
		return d.label
	}
	return d.label + ": " + label
}

// Destroy waits for the queue, fails pending maps and releases all
// resources created through the device.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	d.mu.Unlock()

	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("wgpu: wait idle on destroy", "err", err)
	}

	d.mu.Lock()
	pending := d.maps
	d.maps = make(map[gpucore.BufferID]*pendingMap)
	for _, f := range d.submitted {
		for _, cb := range f.cbs {
			cb.Release()
		}
	}
	d.submitted = nil
	for _, g := range d.bindGroups {
		g.Release()
	}
	for _, p := range d.pipelines {
		p.Release()
	}
	for _, l := range d.pipelineLayouts {
		l.Release()
	}
	for _, l := range d.bgLayouts {
		l.Release()
	}
	for _, m := range d.modules {
		m.Release()
	}
	for _, b := range d.buffers {
		b.Release()
	}
	clear(d.bindGroups)
	clear(d.pipelines)
	clear(d.pipelineLayouts)
	clear(d.bgLayouts)
	clear(d.modules)
	clear(d.buffers)
	d.mu.Unlock()

	for _, m := range pending {
		m.pending.Release()
		m.callback(gpucore.MapStatusDestroyedBeforeCallback)
	}

	if d.owned {
		d.device.Release()
		d.adapter.Release()
		d.instance.Release()
	}
	slogger().Debug("wgpu: device destroyed", "owned", d.owned)
}
