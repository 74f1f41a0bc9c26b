// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bitgrid

// WordBits is the number of cells held by one packed word.
const WordBits = 32

// WordSize is the size of a packed word in bytes.
const WordSize = 4

// Layout describes the packed representation of a square grid.
type Layout struct {
	// LogicalSize is the number of cells per side.
	LogicalSize uint32

	// BlockWidth is the number of words per row: ceil(LogicalSize / 32).
	BlockWidth uint32

	// BlockHeight is the number of word rows, equal to LogicalSize.
	BlockHeight uint32
}

// NewLayout returns the packed layout of a grid with size cells per side.
func NewLayout(size uint32) Layout {
	return Layout{
		LogicalSize: size,
		BlockWidth:  (size + WordBits - 1) / WordBits,
		BlockHeight: size,
	}
}

// NumCells returns the number of cells in the grid.
func (l Layout) NumCells() int {
	return int(l.LogicalSize) * int(l.LogicalSize)
}

// NumBlocks returns the number of packed words.
func (l Layout) NumBlocks() int {
	return int(l.BlockWidth) * int(l.BlockHeight)
}

// ByteSize returns the size of the packed grid in bytes.
func (l Layout) ByteSize() uint64 {
	return uint64(l.NumBlocks()) * WordSize
}

// Index returns the word index and bit position of cell (x, y).
func (l Layout) Index(x, y uint32) (word int, bit uint32) {
	return int(l.BlockWidth*y + x/WordBits), x % WordBits
}

// PaddingBits returns the number of unused bits at the end of every row.
func (l Layout) PaddingBits() uint32 {
	return l.BlockWidth*WordBits - l.LogicalSize
}
