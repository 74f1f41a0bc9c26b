// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gogpu/gol/backend/software"
	"github.com/gogpu/gol/bitgrid"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/pattern"
)

func newDevice(t testing.TB) *software.Device {
	t.Helper()
	dev := software.New()
	t.Cleanup(dev.Destroy)
	return dev
}

func newSim(t testing.TB, size uint32, cells []byte, opts ...Option) *Simulation {
	t.Helper()
	sim, err := New(newDevice(t), size, cells, opts...)
	if err != nil {
		t.Fatalf("New(%d) error = %v", size, err)
	}
	t.Cleanup(sim.Close)
	return sim
}

func mustStep(t testing.TB, sim *Simulation, n int) {
	t.Helper()
	for range n {
		if err := sim.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
}

func mustRead(t testing.TB, sim *Simulation) []byte {
	t.Helper()
	cells, err := sim.ReadState()
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	return cells
}

func assertGrid(t *testing.T, size int, got, want []byte) {
	t.Helper()
	if !pattern.Equal(got, want) {
		t.Fatalf("grids differ\ngot:\n%s\nwant:\n%s", pattern.Format(got, size), pattern.Format(want, size))
	}
}

func TestNewValidation(t *testing.T) {
	dev := newDevice(t)
	badCell := pattern.Empty(8)
	badCell[5] = 2

	tests := []struct {
		name  string
		dev   gpucore.Device
		size  uint32
		cells []byte
		want  error
	}{
		{"nil device", nil, 8, pattern.Empty(8), ErrNilDevice},
		{"zero size", dev, 0, nil, ErrInvalidGridSize},
		{"not multiple of 8", dev, 12, pattern.Empty(12), ErrInvalidGridSize},
		{"short state", dev, 8, pattern.Empty(7), ErrStateLength},
		{"long state", dev, 8, make([]byte, 65), ErrStateLength},
		{"non-binary cell", dev, 8, badCell, bitgrid.ErrCellValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := New(tt.dev, tt.size, tt.cells)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
			if sim != nil {
				t.Error("New() returned a simulation on error")
			}
		})
	}
}

func TestNewValidatesBeforeTouchingDevice(t *testing.T) {
	dev := &countingDevice{Device: newDevice(t)}
	if _, err := New(dev, 16, pattern.Empty(8)); !errors.Is(err, ErrStateLength) {
		t.Fatalf("New() error = %v, want ErrStateLength", err)
	}
	if dev.created != 0 {
		t.Errorf("%d device objects created before validation failed", dev.created)
	}
}

func TestNewReleasesPartialResources(t *testing.T) {
	dev := &countingDevice{Device: newDevice(t), failBindGroup: true}
	_, err := New(dev, 8, pattern.Empty(8))
	if !IsDeviceError(err) || !errors.Is(err, errInjected) {
		t.Fatalf("New() error = %v, want DeviceError wrapping the injected failure", err)
	}
	if dev.created == 0 {
		t.Fatal("no device objects were created")
	}
	if dev.destroyed != dev.created {
		t.Errorf("created %d objects, destroyed %d", dev.created, dev.destroyed)
	}
}

func TestZeroStepIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, size := range []uint32{8, 64} {
		initial := pattern.Random(int(size), rng)
		sim := newSim(t, size, initial)
		assertGrid(t, int(size), mustRead(t, sim), initial)
	}
}

func TestStillLife(t *testing.T) {
	sim := newSim(t, 8, pattern.StillLifes.Cells)
	for i := range 2 {
		mustStep(t, sim, 1)
		if got := mustRead(t, sim); !pattern.Equal(got, pattern.StillLifes.Cells) {
			t.Fatalf("step %d changed the still lifes:\n%s", i+1, pattern.Format(got, 8))
		}
	}
}

func TestBlockAnywhere(t *testing.T) {
	for _, pos := range [][2]int{{0, 0}, {7, 7}, {3, 7}, {7, 0}} {
		cells, err := pattern.Block.At(8, pos[0], pos[1])
		if err != nil {
			t.Fatal(err)
		}
		sim := newSim(t, 8, cells)
		mustStep(t, sim, 3)
		assertGrid(t, 8, mustRead(t, sim), cells)
	}
}

func TestBlinker(t *testing.T) {
	sim := newSim(t, 8, pattern.Blinker[0].Cells)
	for i := 1; i <= 4; i++ {
		mustStep(t, sim, 1)
		assertGrid(t, 8, mustRead(t, sim), pattern.Blinker[i%2].Cells)
	}
}

func TestGlider(t *testing.T) {
	sim := newSim(t, 8, pattern.Glider[0].Cells)

	mustStep(t, sim, 1)
	assertGrid(t, 8, mustRead(t, sim), pattern.Glider[1].Cells)

	mustStep(t, sim, 1)
	assertGrid(t, 8, mustRead(t, sim), pattern.Glider[2].Cells)
}

func TestGliderAllOffsets(t *testing.T) {
	const size = 64
	sim := newSim(t, size, pattern.Empty(size))

	at := func(p pattern.Pattern, x, y int) []byte {
		cells, err := p.At(size, x, y)
		if err != nil {
			t.Fatal(err)
		}
		return cells
	}

	for y := 0; y < size-8; y++ {
		for x := 0; x < size-8; x++ {
			if testing.Short() && x != y {
				continue
			}
			if err := sim.Reset(at(pattern.Glider[0], x, y)); err != nil {
				t.Fatalf("Reset() error = %v", err)
			}

			mustStep(t, sim, 1)
			if got, want := mustRead(t, sim), at(pattern.Glider[1], x, y); !pattern.Equal(got, want) {
				t.Fatalf("offset (%d, %d) step 1:\n%s", x, y, pattern.Format(got, size))
			}
			mustStep(t, sim, 1)
			if got, want := mustRead(t, sim), at(pattern.Glider[2], x, y); !pattern.Equal(got, want) {
				t.Fatalf("offset (%d, %d) step 2:\n%s", x, y, pattern.Format(got, size))
			}
		}
	}
}

func TestReset(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	const size = 32

	for _, steps := range []int{0, 1, 4, 5} {
		sim := newSim(t, size, pattern.Random(size, rng))
		mustStep(t, sim, steps)

		replacement := pattern.Random(size, rng)
		if err := sim.Reset(replacement); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if sim.StepCount() != 0 {
			t.Errorf("StepCount() after Reset = %d, want 0", sim.StepCount())
		}
		assertGrid(t, size, mustRead(t, sim), replacement)

		mustStep(t, sim, 3)
		assertGrid(t, size, mustRead(t, sim), pattern.StepN(replacement, size, 3))
	}
}

func TestResetValidation(t *testing.T) {
	sim := newSim(t, 8, pattern.Glider[0].Cells)
	mustStep(t, sim, 1)

	if err := sim.Reset(pattern.Empty(16)); !errors.Is(err, ErrStateLength) {
		t.Errorf("Reset() error = %v, want ErrStateLength", err)
	}
	if sim.StepCount() != 1 {
		t.Errorf("failed Reset changed StepCount to %d", sim.StepCount())
	}
	assertGrid(t, 8, mustRead(t, sim), pattern.Glider[1].Cells)
}

func TestScaleInvariance(t *testing.T) {
	const (
		small = 8
		large = 64
		off   = 28
		steps = 2
	)
	smallSim := newSim(t, small, pattern.Glider[0].Cells)
	initial, err := pattern.Glider[0].At(large, off, off)
	if err != nil {
		t.Fatal(err)
	}
	largeSim := newSim(t, large, initial)

	mustStep(t, smallSim, steps)
	mustStep(t, largeSim, steps)

	want, err := pattern.Pattern{Size: small, Cells: mustRead(t, smallSim)}.At(large, off, off)
	if err != nil {
		t.Fatal(err)
	}
	assertGrid(t, large, mustRead(t, largeSim), want)
}

func TestMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, size := range []uint32{8, 16, 32, 40, 64, 72, 96} {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			initial := pattern.Random(int(size), rng)
			sim := newSim(t, size, initial)

			want := initial
			for step := 1; step <= 6; step++ {
				mustStep(t, sim, 1)
				want = pattern.Step(want, int(size))
				got := mustRead(t, sim)
				if !pattern.Equal(got, want) {
					t.Fatalf("size %d diverged at step %d\ngot:\n%s\nwant:\n%s",
						size, step, pattern.Format(got, int(size)), pattern.Format(want, int(size)))
				}
			}
		})
	}
}

func TestParity(t *testing.T) {
	sim := newSim(t, 8, pattern.Empty(8))
	a, b := sim.Current(), sim.Next()
	if a == b {
		t.Fatal("Current() and Next() are the same buffer")
	}
	for i := range 5 {
		wantCur, wantNext := a, b
		if i%2 == 1 {
			wantCur, wantNext = b, a
		}
		if sim.Current() != wantCur || sim.Next() != wantNext {
			t.Errorf("step %d: Current/Next = %d/%d, want %d/%d", i, sim.Current(), sim.Next(), wantCur, wantNext)
		}
		mustStep(t, sim, 1)
	}
	if err := sim.Reset(pattern.Empty(8)); err != nil {
		t.Fatal(err)
	}
	if sim.Current() != a {
		t.Error("Reset did not make buffer A current")
	}
}

func TestEncodeStepBatch(t *testing.T) {
	const (
		size  = 32
		steps = 25
	)
	rng := rand.New(rand.NewPCG(7, 8))
	initial := pattern.Random(size, rng)
	sim := newSim(t, size, initial)
	dev := sim.Device()

	enc, err := dev.CreateCommandEncoder("batch")
	if err != nil {
		t.Fatal(err)
	}
	for range steps {
		if err := sim.EncodeStep(enc); err != nil {
			t.Fatalf("EncodeStep() error = %v", err)
		}
	}
	if err := sim.EncodeReadback(enc); err != nil {
		t.Fatal(err)
	}
	cb, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if err := dev.Submit(cb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got, err := sim.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging() error = %v", err)
	}
	if sim.StepCount() != steps {
		t.Errorf("StepCount() = %d, want %d", sim.StepCount(), steps)
	}
	assertGrid(t, size, got, pattern.StepN(initial, size, steps))
}

func TestEncodeReadbackBeforeStep(t *testing.T) {
	sim := newSim(t, 8, pattern.Glider[0].Cells)
	dev := sim.Device()

	enc, _ := dev.CreateCommandEncoder("ordered")
	if err := sim.EncodeReadback(enc); err != nil {
		t.Fatal(err)
	}
	if err := sim.EncodeStep(enc); err != nil {
		t.Fatal(err)
	}
	cb, err := enc.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Submit(cb); err != nil {
		t.Fatal(err)
	}

	before, err := sim.ReadStaging()
	if err != nil {
		t.Fatal(err)
	}
	assertGrid(t, 8, before, pattern.Glider[0].Cells)
	assertGrid(t, 8, mustRead(t, sim), pattern.Glider[1].Cells)
}

func TestStepCount(t *testing.T) {
	sim := newSim(t, 8, pattern.Empty(8))
	mustStep(t, sim, 7)
	if sim.StepCount() != 7 {
		t.Errorf("StepCount() = %d, want 7", sim.StepCount())
	}
	if sim.Size() != 8 || sim.Layout() != bitgrid.NewLayout(8) {
		t.Errorf("Size/Layout = %d/%+v", sim.Size(), sim.Layout())
	}
}

func TestClose(t *testing.T) {
	dev := &countingDevice{Device: newDevice(t)}
	sim, err := New(dev, 8, pattern.Empty(8))
	if err != nil {
		t.Fatal(err)
	}
	sim.Close()
	sim.Close()

	if dev.destroyed != dev.created {
		t.Errorf("created %d objects, destroyed %d", dev.created, dev.destroyed)
	}
	if err := sim.Step(); !errors.Is(err, ErrClosed) {
		t.Errorf("Step() after Close error = %v, want ErrClosed", err)
	}
	if _, err := sim.ReadState(); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadState() after Close error = %v, want ErrClosed", err)
	}
	if err := sim.Reset(pattern.Empty(8)); !errors.Is(err, ErrClosed) {
		t.Errorf("Reset() after Close error = %v, want ErrClosed", err)
	}
}

func TestDeviceLost(t *testing.T) {
	dev := newDevice(t)
	sim, err := New(dev, 8, pattern.Glider[0].Cells)
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	mustStep(t, sim, 1)
	dev.LoseDevice(errors.New("reset by driver"))

	err = sim.Step()
	if !IsDeviceError(err) || !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Errorf("Step() after loss error = %v, want DeviceError wrapping ErrDeviceLost", err)
	}
	if _, err := sim.ReadState(); !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Errorf("ReadState() after loss error = %v, want ErrDeviceLost", err)
	}
}

func TestWithSPIRV(t *testing.T) {
	dev := newDevice(t)
	sim, err := New(dev, 8, pattern.Glider[0].Cells, WithSPIRV(), WithLabel("spirv"))
	if err != nil {
		if strings.Contains(err.Error(), "compile kernel") {
			t.Skipf("naga cannot compile the kernel: %v", err)
		}
		t.Fatalf("New() error = %v", err)
	}
	defer sim.Close()

	mustStep(t, sim, 1)
	assertGrid(t, 8, mustRead(t, sim), pattern.Glider[1].Cells)
}

func TestDeviceErrorFormat(t *testing.T) {
	err := error(&DeviceError{Op: "submit step", Err: gpucore.ErrDeviceLost})
	if got := err.Error(); got != "gol: submit step: gpucore: device lost" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Error("DeviceError does not unwrap")
	}
	if IsDeviceError(ErrStateLength) {
		t.Error("IsDeviceError(ErrStateLength) = true")
	}
}
