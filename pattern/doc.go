// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pattern provides unpacked grids for seeding and checking a
// simulation: well-known Life patterns, embedding of a small pattern into a
// larger toroidal grid, random fills, text rendering for failure messages
// and a sequential reference implementation of the Life rule.
//
// Grids are square, row-major, one byte per cell holding 0 or 1.
package pattern
