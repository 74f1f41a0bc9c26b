// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/kernel"
)

// Step advances the simulation by one generation. The dispatch is
// submitted and runs asynchronously; a later ReadState observes it.
//
// Errors are fatal: see DeviceError.
func (s *Simulation) Step() error {
	if s.closed {
		return ErrClosed
	}
	enc, err := s.dev.CreateCommandEncoder(s.label + " step")
	if err != nil {
		return deviceError("step", err)
	}
	if err := s.EncodeStep(enc); err != nil {
		return err
	}
	cb, err := enc.Finish()
	if err != nil {
		return deviceError("step", err)
	}
	if err := s.dev.Submit(cb); err != nil {
		return deviceError("submit step", err)
	}
	return nil
}

// EncodeStep records one generation into enc and advances the step
// counter. Calls may be repeated to batch many generations into one
// submission; each one reads the buffer the previous one wrote.
//
// The counter advances once the dispatch has been recorded, even if the
// pass then fails to end. Such a failure leaves enc unusable and is fatal.
func (s *Simulation) EncodeStep(enc gpucore.CommandEncoder) error {
	if s.closed {
		return ErrClosed
	}
	x, y, z, err := kernel.WorkgroupCount(s.layout.LogicalSize)
	if err != nil {
		return err
	}

	pass, err := enc.BeginComputePass(s.label + " life")
	if err != nil {
		return deviceError("begin compute pass", err)
	}
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, s.pair.bindGroup())
	pass.Dispatch(x, y, z)
	s.pair.step++

	if err := pass.End(); err != nil {
		return deviceError("end compute pass", err)
	}
	return nil
}
