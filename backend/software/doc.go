// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements gpucore.Device on the CPU.
//
// The device behaves like a real accelerator queue: WriteBuffer and Submit
// return immediately and the recorded work runs later, in submission order,
// on a dedicated queue goroutine. Each dispatch is spread across a worker
// pool one row of workgroups at a time, so kernels must tolerate
// workgroups of the same dispatch running concurrently. Buffer mapping
// completes asynchronously and map callbacks fire from Poll.
//
// Compute shaders are not interpreted. Instead a pipeline's entry point
// selects a registered CPU [Kernel]; the Game of Life kernel is registered
// by default.
//
// Validation follows WebGPU where it matters for correctness: copy
// alignment and bounds, buffer usage flags, mapped buffers cannot be used
// by the queue, and a writable storage binding cannot alias any other
// binding of the same dispatch.
//
// Importing the package registers it with the backend registry under
// backend.BackendSoftware.
package software
