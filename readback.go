// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"runtime"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gol/bitgrid"
	"github.com/gogpu/gol/gpucore"
)

// ReadState returns the current generation, unpacked. It blocks until the
// device has executed every step submitted before the call.
func (s *Simulation) ReadState() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	enc, err := s.dev.CreateCommandEncoder(s.label + " readback")
	if err != nil {
		return nil, deviceError("readback", err)
	}
	if err := s.EncodeReadback(enc); err != nil {
		return nil, err
	}
	cb, err := enc.Finish()
	if err != nil {
		return nil, deviceError("readback", err)
	}
	if err := s.dev.Submit(cb); err != nil {
		return nil, deviceError("submit readback", err)
	}
	return s.ReadStaging()
}

// EncodeReadback records a copy of the current generation into the
// staging buffer. The current buffer is chosen when the copy is recorded,
// so a readback encoded before EncodeStep captures the earlier generation.
func (s *Simulation) EncodeReadback(enc gpucore.CommandEncoder) error {
	if s.closed {
		return ErrClosed
	}
	enc.CopyBufferToBuffer(s.pair.current(), 0, s.staging, 0, s.layout.ByteSize())
	return nil
}

// ReadStaging maps the staging buffer and unpacks it. The copy into the
// staging buffer must have been submitted already, see EncodeReadback.
//
// The map request completes through a callback; ReadStaging polls the
// device and yields until the callback has run. There is no timeout: a
// device that never completes blocks the caller.
func (s *Simulation) ReadStaging() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	size := s.layout.ByteSize()

	s.dev.Poll(true)

	var (
		done   atomic.Bool
		status gpucore.MapStatus
	)
	err := s.dev.MapAsync(s.staging, gputypes.MapModeRead, 0, size, func(st gpucore.MapStatus) {
		status = st
		done.Store(true)
	})
	if err != nil {
		return nil, deviceError("map staging", err)
	}
	polls := 0
	for !done.Load() {
		s.dev.Poll(false)
		runtime.Gosched()
		polls++
	}
	if err := status.Err(); err != nil {
		return nil, deviceError("map staging: "+status.String(), err)
	}

	data, err := s.dev.MappedRange(s.staging, 0, size)
	if uerr := s.dev.Unmap(s.staging); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		return nil, deviceError("read staging", err)
	}

	words, err := bitgrid.BytesToWords(data)
	if err != nil {
		return nil, err
	}
	cells := make([]byte, s.layout.NumCells())
	if err := s.layout.UnpackInto(cells, words); err != nil {
		return nil, err
	}

	s.logger().Debug("gol: readback",
		"label", s.label,
		"step", s.pair.step,
		"bytes", size,
		"polls", polls)
	return cells, nil
}
