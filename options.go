// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import "log/slog"

// Option configures a Simulation during creation.
//
// Example:
//
//	sim, err := gol.New(dev, 512, cells,
//	    gol.WithLabel("world"),
//	    gol.WithLogger(slog.Default()))
type Option func(*options)

type options struct {
	label  string
	logger *slog.Logger
	spirv  bool
}

func defaultOptions() options {
	return options{label: "gol"}
}

// WithLabel sets the prefix of the debug labels given to device objects.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// WithLogger sets a logger for this Simulation only. Without it the
// package logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSPIRV makes New compile the kernel to SPIR-V with naga and hand the
// device the binary module instead of WGSL source.
func WithSPIRV() Option {
	return func(o *options) {
		o.spirv = true
	}
}
