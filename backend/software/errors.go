// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "errors"

var (
	// ErrUnknownEntryPoint is returned when no CPU kernel is registered for
	// a pipeline's entry point.
	ErrUnknownEntryPoint = errors.New("software: no kernel registered for entry point")

	// ErrUnsupportedBinding is returned for non-buffer bindings.
	ErrUnsupportedBinding = errors.New("software: only buffer bindings are supported")

	// ErrBindingMismatch is returned when a bind group does not match its layout.
	ErrBindingMismatch = errors.New("software: bind group does not match layout")

	// ErrStorageAliasing is returned when a writable storage binding overlaps
	// another binding of the same dispatch.
	ErrStorageAliasing = errors.New("software: writable storage buffer aliased in dispatch")

	// ErrForeignCommandBuffer is returned when submitting a command buffer
	// recorded by another device.
	ErrForeignCommandBuffer = errors.New("software: command buffer was not recorded by this device")

	// ErrCommandBufferSubmitted is returned when a command buffer is submitted twice.
	ErrCommandBufferSubmitted = errors.New("software: command buffer already submitted")

	// ErrKernelFault is returned when a kernel panics during a dispatch.
	ErrKernelFault = errors.New("software: kernel fault")
)
