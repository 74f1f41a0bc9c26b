// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bitgrid converts between the unpacked one-byte-per-cell grid
// representation and the dense 32-bit word layout used by the compute
// kernel.
//
// A square grid of n cells per side is stored as n rows of
// BlockWidth = ceil(n/32) words. Cell (x, y) lives in bit x%32 of word
// BlockWidth*y + x/32. When n is not a multiple of 32 the high bits of the
// last word in each row are padding: Pack leaves them zero and Unpack never
// reads them.
//
// Words are transferred to and from the device in little-endian byte order,
// see [WordsToBytes] and [BytesToWords].
package bitgrid
