// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bitgrid

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrLength is returned when an input does not match the layout size.
	ErrLength = errors.New("bitgrid: length does not match grid layout")

	// ErrCellValue is returned when an unpacked cell is neither 0 nor 1.
	ErrCellValue = errors.New("bitgrid: cell value must be 0 or 1")
)

// Pack packs size*size cells in row-major order into a new word slice.
func Pack(size uint32, cells []byte) ([]uint32, error) {
	l := NewLayout(size)
	words := make([]uint32, l.NumBlocks())
	if err := l.PackInto(words, cells); err != nil {
		return nil, err
	}
	return words, nil
}

// Unpack expands packed words into size*size cells of 0 or 1.
func Unpack(size uint32, words []uint32) ([]byte, error) {
	l := NewLayout(size)
	cells := make([]byte, l.NumCells())
	if err := l.UnpackInto(cells, words); err != nil {
		return nil, err
	}
	return cells, nil
}

// PackInto packs cells into dst, which must hold exactly NumBlocks words.
// dst is cleared first so padding bits are always zero.
func (l Layout) PackInto(dst []uint32, cells []byte) error {
	if len(cells) != l.NumCells() {
		return fmt.Errorf("%w: got %d cells, want %d", ErrLength, len(cells), l.NumCells())
	}
	if len(dst) != l.NumBlocks() {
		return fmt.Errorf("%w: got %d words, want %d", ErrLength, len(dst), l.NumBlocks())
	}
	clear(dst)

	n := l.LogicalSize
	for y := range n {
		row := cells[int(y*n) : int(y*n)+int(n)]
		base := int(l.BlockWidth * y)
		for x, s := range row {
			switch s {
			case 0:
			case 1:
				dst[base+x/WordBits] |= 1 << (uint32(x) % WordBits)
			default:
				return fmt.Errorf("%w: cell (%d, %d) = %d", ErrCellValue, x, y, s)
			}
		}
	}
	return nil
}

// UnpackInto expands src into cells, which must hold exactly NumCells bytes.
func (l Layout) UnpackInto(cells []byte, src []uint32) error {
	if len(src) != l.NumBlocks() {
		return fmt.Errorf("%w: got %d words, want %d", ErrLength, len(src), l.NumBlocks())
	}
	if len(cells) != l.NumCells() {
		return fmt.Errorf("%w: got %d cells, want %d", ErrLength, len(cells), l.NumCells())
	}

	n := l.LogicalSize
	for y := range n {
		row := cells[int(y*n) : int(y*n)+int(n)]
		base := int(l.BlockWidth * y)
		for x := range row {
			row[x] = byte(src[base+x/WordBits]>>(uint32(x)%WordBits)) & 1
		}
	}
	return nil
}

// WordsToBytes serializes words in little-endian order for upload.
func WordsToBytes(words []uint32) []byte {
	buf := make([]byte, len(words)*WordSize)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*WordSize:], w)
	}
	return buf
}

// BytesToWords decodes little-endian bytes read back from the device.
func BytesToWords(data []byte) ([]uint32, error) {
	if len(data)%WordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrLength, len(data))
	}
	words := make([]uint32, len(data)/WordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*WordSize:])
	}
	return words, nil
}
