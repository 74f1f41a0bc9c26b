// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/bitgrid"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/kernel"
)

// generationPair holds the two state buffers and the step counter.
//
// buffers[step%2] is the current generation. groups[p] binds buffers[p] as
// the kernel input and buffers[1-p] as its output; both groups are built
// once and never change.
type generationPair struct {
	buffers [2]gpucore.BufferID
	groups  [2]gpucore.BindGroupID
	step    uint64
}

func (g *generationPair) parity() int { return int(g.step % 2) }

func (g *generationPair) current() gpucore.BufferID { return g.buffers[g.parity()] }

func (g *generationPair) next() gpucore.BufferID { return g.buffers[1-g.parity()] }

// bindGroup returns the bind group reading the current generation.
func (g *generationPair) bindGroup() gpucore.BindGroupID { return g.groups[g.parity()] }

// init creates buffers A and B and the two bind groups over them.
func (g *generationPair) init(s *Simulation) error {
	usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	names := [2]string{"cells a", "cells b"}
	for i := range g.buffers {
		id, err := s.createBuffer(names[i], s.layout.ByteSize(), usage)
		if err != nil {
			return err
		}
		g.buffers[i] = id
	}

	for p := range g.groups {
		id, err := s.dev.CreateBindGroup(&gpucore.BindGroupDesc{
			Label:  s.label + " " + names[p] + " to " + names[1-p],
			Layout: s.bgLayout,
			Entries: []gpucore.BindGroupEntry{
				{Binding: kernel.BindingGridSize, Buffer: s.gridSize, Size: kernel.UniformSize},
				{Binding: kernel.BindingCurrent, Buffer: g.buffers[p], Size: s.layout.ByteSize()},
				{Binding: kernel.BindingNext, Buffer: g.buffers[1-p], Size: s.layout.ByteSize()},
				{Binding: kernel.BindingBlockSize, Buffer: s.blockSize, Size: kernel.UniformSize},
			},
		})
		if err != nil {
			return deviceError("create bind group", err)
		}
		g.groups[p] = id
	}
	g.step = 0
	return nil
}

// reset uploads packed words into buffer A and restarts the counter.
func (g *generationPair) reset(dev gpucore.Device, words []uint32) error {
	if err := dev.WriteBuffer(g.buffers[0], 0, bitgrid.WordsToBytes(words)); err != nil {
		return deviceError("reset", err)
	}
	g.step = 0
	return nil
}

func (g *generationPair) release(dev gpucore.Device) {
	for i, id := range g.groups {
		if id != gpucore.InvalidID {
			dev.DestroyBindGroup(id)
			g.groups[i] = gpucore.InvalidID
		}
	}
	for i, id := range g.buffers {
		if id != gpucore.InvalidID {
			dev.DestroyBuffer(id)
			g.buffers[i] = gpucore.InvalidID
		}
	}
}
