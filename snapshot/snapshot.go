// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package snapshot renders unpacked Game of Life generations as images.
//
// Live cells are white and dead cells are black. Scaled images enlarge each
// cell to a scale x scale square so small grids stay readable.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Gray levels of dead and live cells.
const (
	Dead uint8 = 0x00
	Live uint8 = 0xff
)

// ErrScale is returned for a scale below 1.
var ErrScale = errors.New("snapshot: scale must be at least 1")

// Gray returns a size x size image with one pixel per cell.
func Gray(cells []byte, size int) (*image.Gray, error) {
	if size <= 0 || len(cells) != size*size {
		return nil, fmt.Errorf("snapshot: %d cells do not form a %dx%d grid", len(cells), size, size)
	}
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := range size {
		row := img.Pix[y*img.Stride : y*img.Stride+size]
		for x, c := range cells[y*size : (y+1)*size] {
			if c != 0 {
				row[x] = Live
			} else {
				row[x] = Dead
			}
		}
	}
	return img, nil
}

// Scaled returns the grid rendered with scale x scale pixels per cell.
func Scaled(cells []byte, size, scale int) (*image.Gray, error) {
	if scale < 1 {
		return nil, ErrScale
	}
	src, err := Gray(cells, size)
	if err != nil {
		return nil, err
	}
	if scale == 1 {
		return src, nil
	}
	dst := image.NewGray(image.Rect(0, 0, size*scale, size*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePNG encodes the scaled grid as PNG to w.
func WritePNG(w io.Writer, cells []byte, size, scale int) error {
	img, err := Scaled(cells, size, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes the scaled grid to a PNG file at path.
func SavePNG(path string, cells []byte, size, scale int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WritePNG(f, cells, size, scale)
}
