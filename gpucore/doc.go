// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the compute accelerator abstraction the
// simulation is written against.
//
// The [Device] interface covers the small WebGPU subset a double-buffered
// compute simulation needs: storage, uniform and staging buffers, one
// compute pipeline, bind groups, command encoding, in-order queue
// submission and asynchronous buffer mapping. Resources are referred to by
// opaque IDs so that backends can keep their own handle tables.
//
// Implementations:
//   - backend/wgpu wraps github.com/gogpu/wgpu (Vulkan, Metal, DX12, GLES)
//   - backend/software executes the kernels on the CPU
//
// # Asynchronous mapping
//
// Work submitted to the queue executes in submission order but
// asynchronously with respect to the caller. Reading a buffer back follows
// the WebGPU protocol:
//
//	enc.CopyBufferToBuffer(src, 0, staging, 0, size)
//	cb, _ := enc.Finish()
//	dev.Submit(cb)
//	dev.MapAsync(staging, gputypes.MapModeRead, 0, size, func(s MapStatus) { ... })
//	for !done {
//		dev.Poll(false)
//	}
//	data, _ := dev.MappedRange(staging, 0, size)
//	dev.Unmap(staging)
//
// Map callbacks are only ever invoked from inside [Device.Poll] (or with a
// failure status from MapAsync itself), never from a backend goroutine.
package gpucore
