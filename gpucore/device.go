// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device abstracts over compute accelerator backends.
//
// Implementations must be safe for use from one control goroutine at a
// time; map callbacks are delivered on the goroutine calling Poll.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource still referenced by queued work is allowed;
//     the backend keeps it alive until that work has executed
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// AdapterInfo describes the adapter backing this device.
	AdapterInfo() gpucontext.AdapterInfo

	// CreateBuffer creates a zero-initialized buffer.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer schedules a write of data into a buffer on the queue.
	// The write is ordered before any work submitted after it returns.
	// Offset and len(data) must be multiples of CopyAlignment.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// CreateShaderModule creates a shader module from WGSL or SPIR-V.
	CreateShaderModule(desc *ShaderModuleDesc) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreatePipelineLayout creates a pipeline layout.
	CreatePipelineLayout(desc *PipelineLayoutDesc) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateComputePipeline creates a compute pipeline.
	CreateComputePipeline(desc *ComputePipelineDesc) (ComputePipelineID, error)

	// DestroyComputePipeline releases a compute pipeline.
	DestroyComputePipeline(id ComputePipelineID)

	// CreateBindGroup creates a bind group.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreateCommandEncoder begins recording a command buffer.
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit enqueues finished command buffers. They execute asynchronously
	// and in submission order.
	Submit(cmds ...CommandBuffer) error

	// Poll processes completed work and delivers due map callbacks.
	// With wait set it first blocks until all submitted work has executed.
	// It reports whether the queue is idle.
	Poll(wait bool) bool

	// MapAsync requests a mapping of a MapRead buffer. The callback fires
	// from Poll once every submission issued before the request has
	// executed. On validation failure the callback is invoked immediately
	// with the failure status and an error is returned.
	MapAsync(id BufferID, mode gputypes.MapMode, offset, size uint64, callback func(MapStatus)) error

	// MappedRange copies bytes out of a mapped buffer.
	MappedRange(id BufferID, offset, size uint64) ([]byte, error)

	// Unmap releases a mapping. Unmapping a pending request cancels it and
	// its callback receives MapStatusUnmappedBeforeCallback.
	Unmap(id BufferID) error

	// Destroy waits for outstanding work and releases the device.
	Destroy()
}

// CommandEncoder records commands into a command buffer.
//
// Recording errors are sticky: the first one is returned by Finish.
type CommandEncoder interface {
	// BeginComputePass begins a compute pass. The pass must be ended
	// before any other command is recorded on the encoder.
	BeginComputePass(label string) (ComputePassEncoder, error)

	// CopyBufferToBuffer records a copy between two distinct buffers.
	CopyBufferToBuffer(src BufferID, srcOffset uint64, dst BufferID, dstOffset uint64, size uint64)

	// Finish ends recording and returns the command buffer.
	Finish() (CommandBuffer, error)
}

// ComputePassEncoder records compute commands.
//
// Usage:
//  1. Obtain encoder from CommandEncoder.BeginComputePass()
//  2. Set pipeline and bind groups
//  3. Dispatch compute workgroups
//  4. Call End() to finish recording
//
// The encoder is single-use and cannot be reused after End().
type ComputePassEncoder interface {
	// SetPipeline sets the active compute pipeline.
	SetPipeline(pipeline ComputePipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// Dispatch dispatches compute workgroups.
	// x, y, z are the number of workgroups in each dimension.
	Dispatch(x, y, z uint32)

	// End finishes the compute pass.
	End() error
}

// CommandBuffer is a finished, submittable recording.
type CommandBuffer interface {
	// Release frees a command buffer that will not be submitted.
	Release()
}

// CheckCopy validates a buffer-to-buffer copy against WebGPU alignment rules
// and the sizes of the two buffers.
func CheckCopy(srcOffset, srcSize, dstOffset, dstSize, size uint64) error {
	if srcOffset%CopyAlignment != 0 || dstOffset%CopyAlignment != 0 || size%CopyAlignment != 0 {
		return ErrCopyAlignment
	}
	if srcOffset+size > srcSize || dstOffset+size > dstSize {
		return ErrCopyRange
	}
	return nil
}
