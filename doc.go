// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gol runs Conway's Game of Life on a compute accelerator.
//
// # Overview
//
// The grid is square and toroidal. Cells are bit-packed into 32-bit words
// (see package bitgrid) and stored in two device buffers, A and B. The
// step counter selects which one holds the current generation: A on even
// steps, B on odd steps. Each Step dispatches the Life kernel (package
// kernel) in 8x8 workgroups, reading the current buffer and writing the
// next, and then increments the counter.
//
// ReadState copies the current buffer into a host-visible staging buffer,
// waits for the queue, maps the staging buffer and unpacks it. It always
// returns a generation that had fully completed when the copy was recorded.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gol"
//	    "github.com/gogpu/gol/backend"
//	    _ "github.com/gogpu/gol/backend/software"
//	    _ "github.com/gogpu/gol/backend/wgpu"
//	)
//
//	dev, name, err := backend.OpenDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//	log.Printf("using %s backend", name)
//
//	sim, err := gol.New(dev, 256, initial)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//
//	for range 100 {
//	    if err := sim.Step(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	cells, err := sim.ReadState()
//
// # Batching
//
// EncodeStep and EncodeReadback record into a caller-owned encoder so that
// many generations can be submitted at once:
//
//	enc, _ := dev.CreateCommandEncoder("batch")
//	for range 1000 {
//	    sim.EncodeStep(enc)
//	}
//	sim.EncodeReadback(enc)
//	cb, _ := enc.Finish()
//	dev.Submit(cb)
//	cells, err := sim.ReadStaging()
//
// # Concurrency
//
// A Simulation is driven by one goroutine at a time. Device work runs
// asynchronously but in submission order, so step N+1 always observes the
// output of step N.
//
// # Logging
//
// gol is silent by default. Use SetLogger to route diagnostics through a
// log/slog logger; the logger is also handed to devices that accept one.
package gol
