// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel holds the Game of Life compute kernel and everything
// needed to bind it: the embedded WGSL source, the bind group layout shared
// by both generation orderings, the uniform encodings, the workgroup
// partitioning and a CPU mirror of the shader used by the software backend.
//
// Bindings (group 0):
//
//	@binding(0) uniform vec2<f32>                 logical grid size
//	@binding(1) storage(read) array<u32>          current generation
//	@binding(2) storage(read_write) array<u32>    next generation
//	@binding(3) uniform vec2<u32>                 packed grid size (block width, block height)
package kernel
