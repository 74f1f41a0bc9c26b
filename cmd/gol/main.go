// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gol runs a Game of Life simulation on an accelerator and saves
// the final generation as a PNG image.
//
// Usage:
//
//	gol -size 256 -steps 1000 -pattern random -output life.png
//	gol -backend software -pattern glider -size 64 -steps 32 -scale 8
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gogpu/gol"
	"github.com/gogpu/gol/backend"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/pattern"
	"github.com/gogpu/gol/snapshot"

	_ "github.com/gogpu/gol/backend/software"
	_ "github.com/gogpu/gol/backend/wgpu"
)

func main() {
	var (
		size    = flag.Uint("size", 256, "cells per side, a multiple of 8")
		steps   = flag.Int("steps", 100, "generations to run")
		batch   = flag.Int("batch", 16, "generations per submission")
		name    = flag.String("backend", "", "backend name (default: best available)")
		initial = flag.String("pattern", "random", "initial state: random, glider, blinker, empty")
		seed    = flag.Uint64("seed", 1, "seed for the random pattern")
		output  = flag.String("output", "gol.png", "output file")
		scale   = flag.Int("scale", 1, "pixels per cell in the output")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		gol.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cells, err := initialState(*initial, int(*size), *seed)
	if err != nil {
		log.Fatal(err)
	}

	dev, used, err := openDevice(*name)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Destroy()

	sim, err := gol.New(dev, uint32(*size), cells, gol.WithLabel("gol "+used))
	if err != nil {
		log.Fatalf("Failed to create simulation: %v", err)
	}
	defer sim.Close()

	start := time.Now()
	if err := run(sim, *steps, *batch); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
	final, err := sim.ReadState()
	if err != nil {
		log.Fatalf("Readback failed: %v", err)
	}
	elapsed := time.Since(start)

	if err := snapshot.SavePNG(*output, final, int(*size), *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	live := pattern.Pattern{Size: int(*size), Cells: final}.Population()
	log.Printf("%d generations of %dx%d on %s (%s) in %v, %d live cells, saved to %s\n",
		sim.StepCount(), *size, *size, used, dev.AdapterInfo().Name, elapsed, live, *output)
}

func openDevice(name string) (gpucore.Device, string, error) {
	if name == "" {
		return backend.OpenDefault()
	}
	dev, err := backend.Open(name)
	return dev, name, err
}

func initialState(name string, size int, seed uint64) ([]byte, error) {
	switch name {
	case "random":
		return pattern.Random(size, rand.New(rand.NewPCG(seed, seed))), nil
	case "glider":
		return pattern.Glider[0].At(size, 0, 0)
	case "blinker":
		return pattern.Blinker[0].At(size, 0, 0)
	case "empty":
		return pattern.Empty(size), nil
	default:
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
}

// run advances sim by steps generations, batch generations per submission.
func run(sim *gol.Simulation, steps, batch int) error {
	if batch < 1 {
		return errors.New("batch must be at least 1")
	}
	dev := sim.Device()
	for done := 0; done < steps; {
		n := min(batch, steps-done)
		enc, err := dev.CreateCommandEncoder("gol batch")
		if err != nil {
			return err
		}
		for range n {
			if err := sim.EncodeStep(enc); err != nil {
				return err
			}
		}
		cb, err := enc.Finish()
		if err != nil {
			return err
		}
		if err := dev.Submit(cb); err != nil {
			return err
		}
		done += n
	}
	return nil
}
