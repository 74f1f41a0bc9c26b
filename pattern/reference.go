// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pattern

// Step advances a toroidal grid by one generation on the CPU, one cell at a
// time. It is the reference the accelerated kernel is checked against.
func Step(cells []byte, size int) []byte {
	next := make([]byte, len(cells))
	for y := range size {
		for x := range size {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := (x + dx + size) % size
					ny := (y + dy + size) % size
					neighbors += int(cells[ny*size+nx])
				}
			}
			idx := y*size + x
			alive := cells[idx] == 1
			if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
				next[idx] = 1
			}
		}
	}
	return next
}

// StepN applies Step n times.
func StepN(cells []byte, size, n int) []byte {
	for range n {
		cells = Step(cells, size)
	}
	return cells
}
