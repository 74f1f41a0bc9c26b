// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pattern

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pattern is a square unpacked grid.
type Pattern struct {
	Size  int
	Cells []byte
}

// Parse builds a pattern from rows of '0'/'1' (or '.'/'#') characters.
// All rows must have the same length as the number of rows.
func Parse(rows ...string) (Pattern, error) {
	n := len(rows)
	cells := make([]byte, 0, n*n)
	for y, row := range rows {
		if len(row) != n {
			return Pattern{}, fmt.Errorf("pattern: row %d has %d cells, want %d", y, len(row), n)
		}
		for x, c := range row {
			switch c {
			case '0', '.':
				cells = append(cells, 0)
			case '1', '#':
				cells = append(cells, 1)
			default:
				return Pattern{}, fmt.Errorf("pattern: invalid cell %q at (%d, %d)", c, x, y)
			}
		}
	}
	return Pattern{Size: n, Cells: cells}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(rows ...string) Pattern {
	p, err := Parse(rows...)
	if err != nil {
		panic(err)
	}
	return p
}

// Clone returns a deep copy of p.
func (p Pattern) Clone() Pattern {
	return Pattern{Size: p.Size, Cells: append([]byte(nil), p.Cells...)}
}

// Population returns the number of live cells.
func (p Pattern) Population() int {
	n := 0
	for _, c := range p.Cells {
		n += int(c)
	}
	return n
}

// String renders p with one text line per row.
func (p Pattern) String() string {
	return Format(p.Cells, p.Size)
}

// Glider holds three consecutive phases of a glider travelling towards
// the bottom right, each confined to the top-left corner of an 8x8 grid.
var Glider = [3]Pattern{
	MustParse(
		"00100000",
		"10100000",
		"01100000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
	),
	MustParse(
		"01000000",
		"00110000",
		"01100000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
	),
	MustParse(
		"00100000",
		"00010000",
		"01110000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
	),
}

// Block is the 2x2 still life.
var Block = MustParse(
	"11",
	"11",
)

// StillLifes is an 8x8 grid holding a block and a ship, neither of which
// changes from one generation to the next.
var StillLifes = MustParse(
	"00000000",
	"01100000",
	"01100000",
	"00000000",
	"00000000",
	"00000110",
	"00001010",
	"00001100",
)

// Blinker holds the two phases of a period-2 oscillator in an 8x8 grid.
var Blinker = [2]Pattern{
	MustParse(
		"00000000",
		"00000000",
		"00000000",
		"00111000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
	),
	MustParse(
		"00000000",
		"00000000",
		"00010000",
		"00010000",
		"00010000",
		"00000000",
		"00000000",
		"00000000",
	),
}

// Empty returns an all-dead grid.
func Empty(size int) []byte {
	return make([]byte, size*size)
}

// Full returns an all-alive grid.
func Full(size int) []byte {
	cells := make([]byte, size*size)
	for i := range cells {
		cells[i] = 1
	}
	return cells
}

// Random returns a grid where each cell is alive with probability 1/2.
func Random(size int, rng *rand.Rand) []byte {
	cells := make([]byte, size*size)
	for i := range cells {
		cells[i] = byte(rng.IntN(2))
	}
	return cells
}

// Embed copies src (srcSize cells per side) into dst (dstSize cells per
// side) with its top-left corner at (x, y). Coordinates wrap around the
// edges of dst. Cells of dst outside the copied region are left untouched.
func Embed(dst []byte, dstSize int, src []byte, srcSize int, x, y int) error {
	if len(dst) != dstSize*dstSize {
		return fmt.Errorf("pattern: destination has %d cells, want %d", len(dst), dstSize*dstSize)
	}
	if len(src) != srcSize*srcSize {
		return fmt.Errorf("pattern: source has %d cells, want %d", len(src), srcSize*srcSize)
	}
	if srcSize > dstSize {
		return fmt.Errorf("pattern: %dx%d source does not fit into %dx%d grid", srcSize, srcSize, dstSize, dstSize)
	}
	for sy := range srcSize {
		dy := mod(y+sy, dstSize)
		for sx := range srcSize {
			dx := mod(x+sx, dstSize)
			dst[dy*dstSize+dx] = src[sy*srcSize+sx]
		}
	}
	return nil
}

// At returns a new dstSize grid with p embedded at (x, y).
func (p Pattern) At(dstSize, x, y int) ([]byte, error) {
	dst := Empty(dstSize)
	if err := Embed(dst, dstSize, p.Cells, p.Size, x, y); err != nil {
		return nil, err
	}
	return dst, nil
}

// Equal reports whether two grids hold the same cells.
func Equal(a, b []byte) bool {
	return string(a) == string(b)
}

// Format renders a grid as text, '#' for live and '.' for dead cells.
func Format(cells []byte, size int) string {
	var sb strings.Builder
	sb.Grow(len(cells) + size)
	for y := range size {
		for x := range size {
			if cells[y*size+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
