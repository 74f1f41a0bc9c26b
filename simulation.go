// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/bitgrid"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/kernel"
)

// Simulation is a Game of Life grid resident on a device.
//
// All device objects are created by New and released by Close; the device
// itself belongs to the caller.
type Simulation struct {
	dev    gpucore.Device
	layout bitgrid.Layout
	label  string
	log    *slog.Logger

	pair generationPair

	gridSize  gpucore.BufferID
	blockSize gpucore.BufferID
	staging   gpucore.BufferID

	module         gpucore.ShaderModuleID
	bgLayout       gpucore.BindGroupLayoutID
	pipelineLayout gpucore.PipelineLayoutID
	pipeline       gpucore.ComputePipelineID

	// words is scratch space for packing.
	words []uint32

	untrack func()
	closed  bool
}

// New creates a simulation of a size x size grid on dev, initialized from
// the unpacked row-major state initial (one byte per cell, 0 or 1).
//
// size must be a positive multiple of 8. Arguments are validated before any
// device object is created.
func New(dev gpucore.Device, size uint32, initial []byte, opts ...Option) (*Simulation, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if err := kernel.CheckGridSize(size); err != nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGridSize, size)
	}
	layout := bitgrid.NewLayout(size)
	if len(initial) != layout.NumCells() {
		return nil, fmt.Errorf("%w: got %d cells, want %d", ErrStateLength, len(initial), layout.NumCells())
	}
	words := make([]uint32, layout.NumBlocks())
	if err := layout.PackInto(words, initial); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Simulation{
		dev:    dev,
		layout: layout,
		label:  o.label,
		log:    o.logger,
		words:  words,
	}
	if err := s.init(o); err != nil {
		s.release()
		return nil, err
	}
	s.untrack = trackDevice(dev)

	s.logger().Info("gol: simulation created",
		"label", s.label,
		"size", size,
		"block_width", layout.BlockWidth,
		"bytes", layout.ByteSize(),
		"adapter", dev.AdapterInfo().Name)
	return s, nil
}

// init creates the device objects and uploads the initial state.
func (s *Simulation) init(o options) error {
	if err := s.createPipeline(o.spirv); err != nil {
		return err
	}

	var err error
	uniform := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	if s.gridSize, err = s.createBuffer("grid size", kernel.UniformSize, uniform); err != nil {
		return err
	}
	if s.blockSize, err = s.createBuffer("block size", kernel.UniformSize, uniform); err != nil {
		return err
	}
	s.staging, err = s.createBuffer("staging", s.layout.ByteSize(),
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	if err := s.pair.init(s); err != nil {
		return err
	}

	if err := s.dev.WriteBuffer(s.gridSize, 0, kernel.GridSizeUniform(s.layout.LogicalSize)); err != nil {
		return deviceError("write grid size", err)
	}
	if err := s.dev.WriteBuffer(s.blockSize, 0, kernel.BlockSizeUniform(s.layout)); err != nil {
		return deviceError("write block size", err)
	}
	// Buffer B is left as created: devices zero-initialize buffers.
	if err := s.dev.WriteBuffer(s.pair.buffers[0], 0, bitgrid.WordsToBytes(s.words)); err != nil {
		return deviceError("write initial state", err)
	}
	return nil
}

// createPipeline creates the shader module, the layout shared by both
// parities and the compute pipeline.
func (s *Simulation) createPipeline(spirv bool) error {
	desc := &gpucore.ShaderModuleDesc{Label: s.label + " kernel"}
	if spirv {
		words, err := kernel.SPIRV()
		if err != nil {
			return fmt.Errorf("gol: compile kernel: %w", err)
		}
		desc.SPIRV = words
	} else {
		desc.WGSL = kernel.Source()
	}

	var err error
	if s.module, err = s.dev.CreateShaderModule(desc); err != nil {
		return deviceError("create shader module", err)
	}
	s.bgLayout, err = s.dev.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label:   s.label + " bindings",
		Entries: kernel.LayoutEntries(),
	})
	if err != nil {
		return deviceError("create bind group layout", err)
	}
	s.pipelineLayout, err = s.dev.CreatePipelineLayout(&gpucore.PipelineLayoutDesc{
		Label:            s.label + " pipeline layout",
		BindGroupLayouts: []gpucore.BindGroupLayoutID{s.bgLayout},
	})
	if err != nil {
		return deviceError("create pipeline layout", err)
	}
	s.pipeline, err = s.dev.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label:      s.label + " step",
		Layout:     s.pipelineLayout,
		Module:     s.module,
		EntryPoint: kernel.EntryPoint,
	})
	if err != nil {
		return deviceError("create compute pipeline", err)
	}

	s.logger().Debug("gol: pipeline created",
		"entry_point", kernel.EntryPoint,
		"spirv", spirv)
	return nil
}

func (s *Simulation) createBuffer(name string, size uint64, usage gputypes.BufferUsage) (gpucore.BufferID, error) {
	id, err := s.dev.CreateBuffer(&gpucore.BufferDesc{
		Label: s.label + " " + name,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return gpucore.InvalidID, deviceError("create "+name+" buffer", err)
	}
	return id, nil
}

// release destroys every device object created so far. It is used both
// by Close and to unwind a failed New.
func (s *Simulation) release() {
	s.pair.release(s.dev)
	for _, id := range []*gpucore.BufferID{&s.gridSize, &s.blockSize, &s.staging} {
		if *id != gpucore.InvalidID {
			s.dev.DestroyBuffer(*id)
			*id = gpucore.InvalidID
		}
	}
	if s.pipeline != gpucore.InvalidID {
		s.dev.DestroyComputePipeline(s.pipeline)
		s.pipeline = gpucore.InvalidID
	}
	if s.pipelineLayout != gpucore.InvalidID {
		s.dev.DestroyPipelineLayout(s.pipelineLayout)
		s.pipelineLayout = gpucore.InvalidID
	}
	if s.bgLayout != gpucore.InvalidID {
		s.dev.DestroyBindGroupLayout(s.bgLayout)
		s.bgLayout = gpucore.InvalidID
	}
	if s.module != gpucore.InvalidID {
		s.dev.DestroyShaderModule(s.module)
		s.module = gpucore.InvalidID
	}
}

// Close releases the device objects of the simulation. Close is
// idempotent; the device itself stays open.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.release()
	if s.untrack != nil {
		s.untrack()
	}
	s.logger().Debug("gol: simulation closed", "label", s.label, "steps", s.pair.step)
}

// Reset replaces the current generation with state and sets the step
// counter to zero. The write is ordered before any later step.
func (s *Simulation) Reset(state []byte) error {
	if s.closed {
		return ErrClosed
	}
	if len(state) != s.layout.NumCells() {
		return fmt.Errorf("%w: got %d cells, want %d", ErrStateLength, len(state), s.layout.NumCells())
	}
	if err := s.layout.PackInto(s.words, state); err != nil {
		return err
	}
	if err := s.pair.reset(s.dev, s.words); err != nil {
		return err
	}
	s.logger().Debug("gol: reset", "label", s.label)
	return nil
}

// Size returns the number of cells per side.
func (s *Simulation) Size() uint32 { return s.layout.LogicalSize }

// Layout returns the packed layout of the grid.
func (s *Simulation) Layout() bitgrid.Layout { return s.layout }

// StepCount returns the number of generations since construction or the
// last Reset.
func (s *Simulation) StepCount() uint64 { return s.pair.step }

// Current returns the buffer holding the last completed generation.
func (s *Simulation) Current() gpucore.BufferID { return s.pair.current() }

// Next returns the buffer the next step writes.
func (s *Simulation) Next() gpucore.BufferID { return s.pair.next() }

// Device returns the device the simulation runs on.
func (s *Simulation) Device() gpucore.Device { return s.dev }

func (s *Simulation) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return Logger()
}

// IsDeviceError reports whether err is a fatal device failure.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}
