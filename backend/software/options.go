// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "github.com/gogpu/gol/kernel"

// Kernel executes one workgroup of a compute entry point. bindings maps
// the binding indices of bind group 0 to the words of the bound buffer
// ranges. Workgroups of one dispatch may run concurrently.
type Kernel func(group [3]uint32, bindings map[uint32][]uint32)

// Option configures a Device during creation.
type Option func(*options)

type options struct {
	workers    int
	queueDepth int
	kernels    map[string]Kernel
}

func defaultOptions() options {
	return options{
		queueDepth: 64,
		kernels: map[string]Kernel{
			kernel.EntryPoint: kernel.RunWorkgroup,
		},
	}
}

// WithWorkers sets the number of goroutines executing workgroups.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithQueueDepth sets how many submissions may be queued before Submit blocks.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

// WithKernel registers a CPU kernel for a compute entry point, replacing
// any kernel already registered under that name.
func WithKernel(entryPoint string, k Kernel) Option {
	return func(o *options) {
		o.kernels[entryPoint] = k
	}
}
