// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gol/gpucore"
)

var errInjected = errors.New("injected failure")

// countingDevice wraps a device and counts created and destroyed objects.
type countingDevice struct {
	gpucore.Device

	failBindGroup bool
	created       int
	destroyed     int
	logger        *slog.Logger
}

func (d *countingDevice) SetLogger(l *slog.Logger) { d.logger = l }

func (d *countingDevice) count(err error) {
	if err == nil {
		d.created++
	}
}

func (d *countingDevice) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	id, err := d.Device.CreateBuffer(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyBuffer(id gpucore.BufferID) {
	d.destroyed++
	d.Device.DestroyBuffer(id)
}

func (d *countingDevice) CreateShaderModule(desc *gpucore.ShaderModuleDesc) (gpucore.ShaderModuleID, error) {
	id, err := d.Device.CreateShaderModule(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.destroyed++
	d.Device.DestroyShaderModule(id)
}

func (d *countingDevice) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	id, err := d.Device.CreateBindGroupLayout(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	d.destroyed++
	d.Device.DestroyBindGroupLayout(id)
}

func (d *countingDevice) CreatePipelineLayout(desc *gpucore.PipelineLayoutDesc) (gpucore.PipelineLayoutID, error) {
	id, err := d.Device.CreatePipelineLayout(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.destroyed++
	d.Device.DestroyPipelineLayout(id)
}

func (d *countingDevice) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	id, err := d.Device.CreateComputePipeline(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	d.destroyed++
	d.Device.DestroyComputePipeline(id)
}

func (d *countingDevice) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if d.failBindGroup {
		return gpucore.InvalidID, errInjected
	}
	id, err := d.Device.CreateBindGroup(desc)
	d.count(err)
	return id, err
}

func (d *countingDevice) DestroyBindGroup(id gpucore.BindGroupID) {
	d.destroyed++
	d.Device.DestroyBindGroup(id)
}
