// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol_test

import (
	"fmt"
	"log"

	"github.com/gogpu/gol"
	"github.com/gogpu/gol/backend/software"
	"github.com/gogpu/gol/pattern"
)

func Example() {
	dev := software.New()
	defer dev.Destroy()

	sim, err := gol.New(dev, 8, pattern.Blinker[0].Cells)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	if err := sim.Step(); err != nil {
		log.Fatal(err)
	}
	cells, err := sim.ReadState()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(pattern.Format(cells, 8))
	// Output:
	// ........
	// ........
	// ...#....
	// ...#....
	// ...#....
	// ........
	// ........
	// ........
}

func ExampleSimulation_EncodeStep() {
	dev := software.New()
	defer dev.Destroy()

	sim, err := gol.New(dev, 8, pattern.Glider[0].Cells)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	enc, err := dev.CreateCommandEncoder("batch")
	if err != nil {
		log.Fatal(err)
	}
	for range 2 {
		if err := sim.EncodeStep(enc); err != nil {
			log.Fatal(err)
		}
	}
	if err := sim.EncodeReadback(enc); err != nil {
		log.Fatal(err)
	}
	cb, err := enc.Finish()
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.Submit(cb); err != nil {
		log.Fatal(err)
	}

	cells, err := sim.ReadStaging()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sim.StepCount(), pattern.Equal(cells, pattern.Glider[2].Cells))
	// Output: 2 true
}
