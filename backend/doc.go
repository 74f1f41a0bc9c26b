// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the compute device a simulation runs on.
//
// # Backend Registration
//
// Backends are registered via init() functions in their packages and
// selected at runtime. Import the backends you want to make available:
//
//	import (
//		_ "github.com/gogpu/gol/backend/software"
//		_ "github.com/gogpu/gol/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use OpenDefault to open the best available device, or Open to request a
// specific backend by name:
//
//	dev, name, err := backend.OpenDefault()
//
//	// Or request a specific backend
//	dev, err := backend.Open(backend.BackendSoftware)
//
// The caller owns the returned device and must call Destroy when done.
package backend
