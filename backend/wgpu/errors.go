// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/gol/gpucore"
)

var (
	// ErrNoAdapter is returned when no adapter satisfies the request.
	ErrNoAdapter = errors.New("wgpu: no suitable adapter")

	// ErrProviderType is returned when a DeviceProvider does not expose
	// gogpu/wgpu handles.
	ErrProviderType = errors.New("wgpu: provider does not expose *wgpu.Device and *wgpu.Queue")

	// ErrForeignCommandBuffer is returned when submitting a command buffer
	// recorded by another device.
	ErrForeignCommandBuffer = errors.New("wgpu: command buffer was not recorded by this device")
)

// mapStatus translates a gogpu/wgpu map result into a gpucore status.
func mapStatus(err error) gpucore.MapStatus {
	switch {
	case err == nil:
		return gpucore.MapStatusSuccess
	case errors.Is(err, wgpu.ErrMapCanceled):
		return gpucore.MapStatusUnmappedBeforeCallback
	case errors.Is(err, wgpu.ErrBufferDestroyed), errors.Is(err, wgpu.ErrReleased):
		return gpucore.MapStatusDestroyedBeforeCallback
	case errors.Is(err, wgpu.ErrMapDeviceLost):
		return gpucore.MapStatusDeviceLost
	case errors.Is(err, wgpu.ErrMapAlreadyPending), errors.Is(err, wgpu.ErrMapAlreadyMapped):
		return gpucore.MapStatusMappingAlreadyPending
	case errors.Is(err, wgpu.ErrMapAlignment):
		return gpucore.MapStatusOffsetOutOfRange
	default:
		return gpucore.MapStatusValidationError
	}
}

// mapError wraps a gogpu/wgpu map error with the matching gpucore sentinel.
func mapError(err error) error {
	switch mapStatus(err) {
	case gpucore.MapStatusSuccess:
		return nil
	case gpucore.MapStatusMappingAlreadyPending:
		return errors.Join(gpucore.ErrBufferAlreadyMapped, err)
	case gpucore.MapStatusOffsetOutOfRange:
		return errors.Join(gpucore.ErrInvalidMapRange, err)
	case gpucore.MapStatusDeviceLost:
		return errors.Join(gpucore.ErrDeviceLost, err)
	default:
		return errors.Join(gpucore.ErrMappingFailed, err)
	}
}

// adapterType classifies a gogpu/wgpu device type.
func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
