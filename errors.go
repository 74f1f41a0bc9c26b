// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGridSize is returned when the grid size is zero or not a
	// multiple of the workgroup size.
	ErrInvalidGridSize = errors.New("gol: grid size must be a positive multiple of 8")

	// ErrStateLength is returned when an unpacked state does not hold
	// exactly size*size cells.
	ErrStateLength = errors.New("gol: state length does not match grid size")

	// ErrNilDevice is returned by New when no device is given.
	ErrNilDevice = errors.New("gol: nil device")

	// ErrClosed is returned when using a closed Simulation.
	ErrClosed = errors.New("gol: simulation closed")
)

// DeviceError reports a failure of the accelerator. Device errors are
// fatal for the Simulation: buffer contents can no longer be trusted and
// the caller should rebuild it.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("gol: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}
