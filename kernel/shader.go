// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/life.wgsl
var lifeShaderSource string

// EntryPoint is the compute entry point of the Life shader.
const EntryPoint = "life_step"

// Source returns the WGSL source of the Life shader.
func Source() string {
	return lifeShaderSource
}

// Validate parses, lowers and validates the shader with naga.
func Validate() error {
	ast, err := naga.Parse(lifeShaderSource)
	if err != nil {
		return fmt.Errorf("kernel: parse: %w", err)
	}
	module, err := naga.LowerWithSource(ast, lifeShaderSource)
	if err != nil {
		return fmt.Errorf("kernel: lower: %w", err)
	}
	errs, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("kernel: validate: %w", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("kernel: validate: %w", &errs[0])
	}
	return nil
}

// SPIRV compiles the shader to SPIR-V words.
func SPIRV() ([]uint32, error) {
	spirvBytes, err := naga.Compile(lifeShaderSource)
	if err != nil {
		return nil, fmt.Errorf("kernel: compile: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
