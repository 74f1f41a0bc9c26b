// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/gol"
	"github.com/gogpu/gol/gpucore"
	"github.com/gogpu/gol/pattern"
)

// openHardware opens a hardware adapter or skips the test.
func openHardware(t *testing.T) *Device {
	t.Helper()
	d, err := Open()
	if err != nil {
		t.Skipf("no wgpu adapter: %v", err)
	}
	if d.AdapterInfo().Type == gpucontext.AdapterTypeSoftware {
		d.Destroy()
		t.Skip("only a software adapter is available")
	}
	t.Cleanup(d.Destroy)
	return d
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		err  error
		want gpucore.MapStatus
	}{
		{nil, gpucore.MapStatusSuccess},
		{wgpu.ErrMapCanceled, gpucore.MapStatusUnmappedBeforeCallback},
		{wgpu.ErrBufferDestroyed, gpucore.MapStatusDestroyedBeforeCallback},
		{wgpu.ErrMapDeviceLost, gpucore.MapStatusDeviceLost},
		{wgpu.ErrMapAlreadyPending, gpucore.MapStatusMappingAlreadyPending},
		{wgpu.ErrMapAlignment, gpucore.MapStatusOffsetOutOfRange},
		{errors.New("other"), gpucore.MapStatusValidationError},
	}
	for _, tt := range tests {
		if got := mapStatus(tt.err); got != tt.want {
			t.Errorf("mapStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestMapError(t *testing.T) {
	if err := mapError(nil); err != nil {
		t.Errorf("mapError(nil) = %v", err)
	}
	err := mapError(wgpu.ErrMapAlignment)
	if !errors.Is(err, gpucore.ErrInvalidMapRange) || !errors.Is(err, wgpu.ErrMapAlignment) {
		t.Errorf("mapError(alignment) = %v, want both sentinels", err)
	}
	if err := mapError(wgpu.ErrMapDeviceLost); !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Errorf("mapError(device lost) = %v, want ErrDeviceLost", err)
	}
}

func TestAdapterType(t *testing.T) {
	tests := []struct {
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{gputypes.DeviceTypeVirtualGPU, gpucontext.AdapterTypeUnknown},
		{gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tt := range tests {
		if got := adapterType(tt.in); got != tt.want {
			t.Errorf("adapterType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type fakeProvider struct {
	dev   gpucontext.Device
	queue gpucontext.Queue
}

func (p fakeProvider) Device() gpucontext.Device             { return p.dev }
func (p fakeProvider) Queue() gpucontext.Queue               { return p.queue }
func (p fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p fakeProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "fake"}
}

func TestNewFromProviderRejectsForeignHandles(t *testing.T) {
	if _, err := NewFromProvider(nil); !errors.Is(err, ErrProviderType) {
		t.Errorf("NewFromProvider(nil) error = %v, want ErrProviderType", err)
	}
	if _, err := NewFromProvider(fakeProvider{dev: "device", queue: "queue"}); !errors.Is(err, ErrProviderType) {
		t.Errorf("NewFromProvider(strings) error = %v, want ErrProviderType", err)
	}
}

func TestNewFromProvider(t *testing.T) {
	owner := openHardware(t)
	dev, queue := owner.Raw()

	d, err := NewFromProvider(fakeProvider{dev: dev, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider() error = %v", err)
	}
	if d.AdapterInfo().Name != "fake" {
		t.Errorf("AdapterInfo().Name = %q, want provider's", d.AdapterInfo().Name)
	}
	id, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "probe", Size: 16, Usage: gputypes.BufferUsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	d.DestroyBuffer(id)
	d.Destroy()

	// The borrowed device stays usable for its owner.
	if _, err := owner.CreateBuffer(&gpucore.BufferDesc{Size: 16, Usage: gputypes.BufferUsageStorage}); err != nil {
		t.Errorf("owner CreateBuffer() after borrower Destroy error = %v", err)
	}
}

func TestGliderOnHardware(t *testing.T) {
	d := openHardware(t)

	const size = 64
	glider, err := pattern.Glider[0].At(size, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	sim, err := gol.New(d, size, glider)
	if err != nil {
		t.Fatalf("gol.New() error = %v", err)
	}
	defer sim.Close()

	for range 8 {
		if err := sim.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	got, err := sim.ReadState()
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	if want := pattern.StepN(glider, size, 8); !pattern.Equal(got, want) {
		t.Errorf("after 8 steps:\n%s\nwant:\n%s", pattern.Format(got, size), pattern.Format(want, size))
	}
}

func TestMapLifecycleOnHardware(t *testing.T) {
	d := openHardware(t)

	src, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 16, Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc})
	if err != nil {
		t.Fatal(err)
	}
	staging, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 16, Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if err := d.WriteBuffer(src, 0, want); err != nil {
		t.Fatal(err)
	}
	enc, err := d.CreateCommandEncoder("copy")
	if err != nil {
		t.Fatal(err)
	}
	enc.CopyBufferToBuffer(src, 0, staging, 0, 16)
	cb, err := enc.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(cb); err != nil {
		t.Fatal(err)
	}

	var status gpucore.MapStatus = -1
	if err := d.MapAsync(staging, gputypes.MapModeRead, 0, 16, func(s gpucore.MapStatus) { status = s }); err != nil {
		t.Fatal(err)
	}
	if _, err := d.MappedRange(staging, 0, 16); !errors.Is(err, gpucore.ErrBufferMapPending) {
		t.Errorf("MappedRange while pending error = %v, want ErrBufferMapPending", err)
	}
	for i := 0; status == -1 && i < 100; i++ {
		d.Poll(true)
	}
	if status != gpucore.MapStatusSuccess {
		t.Fatalf("map status = %v", status)
	}
	got, err := d.MappedRange(staging, 0, 16)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("mapped %v, want %v", got, want)
	}
	if err := d.Unmap(staging); err != nil {
		t.Fatal(err)
	}
}
