// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// Device errors shared by all backends.
var (
	// ErrDeviceLost is returned once the device can no longer execute work.
	ErrDeviceLost = errors.New("gpucore: device lost")

	// ErrDeviceDestroyed is returned when operating on a destroyed device.
	ErrDeviceDestroyed = errors.New("gpucore: device has been destroyed")

	// ErrUnknownResource is returned for an ID the device does not know.
	ErrUnknownResource = errors.New("gpucore: unknown resource id")

	// ErrInvalidBufferSize is returned when buffer size is invalid.
	ErrInvalidBufferSize = errors.New("gpucore: invalid buffer size")

	// ErrUsageMismatch is returned when a buffer is used in a way its usage
	// flags do not allow.
	ErrUsageMismatch = errors.New("gpucore: buffer usage does not allow operation")

	// ErrCopyAlignment is returned when copy offsets or sizes are not 4-byte aligned.
	ErrCopyAlignment = errors.New("gpucore: copy offset or size is not aligned")

	// ErrCopyRange is returned when a copy or write exceeds buffer bounds.
	ErrCopyRange = errors.New("gpucore: copy range out of bounds")

	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpucore: buffer has been destroyed")

	// ErrBufferAlreadyMapped is returned when mapping an already mapped buffer.
	ErrBufferAlreadyMapped = errors.New("gpucore: buffer is already mapped or mapping is pending")

	// ErrBufferNotMapped is returned when accessing unmapped buffer data.
	ErrBufferNotMapped = errors.New("gpucore: buffer is not mapped")

	// ErrBufferMapPending is returned when accessing a buffer with a pending map.
	ErrBufferMapPending = errors.New("gpucore: buffer mapping is pending")

	// ErrBufferInUse is returned when submitting work that touches a mapped buffer.
	ErrBufferInUse = errors.New("gpucore: buffer is mapped and cannot be used by the queue")

	// ErrInvalidMapRange is returned when the map range is out of bounds or misaligned.
	ErrInvalidMapRange = errors.New("gpucore: map range out of bounds")

	// ErrMappingFailed is returned when buffer mapping fails.
	ErrMappingFailed = errors.New("gpucore: buffer mapping failed")

	// ErrCallbackNil is returned when MapAsync is called with nil callback.
	ErrCallbackNil = errors.New("gpucore: map callback is nil")

	// ErrEncoderFinished is returned when recording into a finished encoder.
	ErrEncoderFinished = errors.New("gpucore: command encoder already finished")

	// ErrPassOpen is returned when an encoder is used while a pass is still open.
	ErrPassOpen = errors.New("gpucore: compute pass has not been ended")

	// ErrNoPipeline is returned when dispatching without a pipeline set.
	ErrNoPipeline = errors.New("gpucore: dispatch without compute pipeline")

	// ErrMissingBindGroup is returned when dispatching without a required bind group.
	ErrMissingBindGroup = errors.New("gpucore: dispatch without bind group")
)
