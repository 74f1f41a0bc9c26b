// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpucore.Device on top of gogpu/wgpu, the Pure Go
// WebGPU implementation (Vulkan, Metal, DX12, GLES).
//
// Importing the package registers the "wgpu" backend:
//
//	import _ "github.com/gogpu/gol/backend/wgpu"
//
// A device can also wrap a host application's GPU context, so that the
// simulation shares the device used for presentation:
//
//	dev, err := wgpu.NewFromProvider(app) // app implements gpucontext.DeviceProvider
//
// Map callbacks are delivered only from Device.Poll. Submitted command
// buffers are released once the queue reports their submission complete.
package wgpu
