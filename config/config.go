// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config provides functional options for constructing the
// asset manager, moving from a fixed descriptor-struct pattern to the
// functional-options idiom, which fits better once the optional field
// count grows past two or three — as it does here (worker count, max
// inflight jobs, handle type, GPU collaborator).
package config

import "github.com/gogpu/assetcore/gpuhal"

// Options holds the asset manager's initialization parameters.
type Options struct {
	WorkerCount     int
	MaxInflightJobs int
	HandleType      uint16
	GPU             gpuhal.Device
}

// Option mutates Options during construction.
type Option func(*Options)

// Defaults returns the baseline defaults: 4 workers, 1024 max
// in-flight jobs, handle type 1, and a no-op GPU collaborator.
func Defaults() Options {
	return Options{
		WorkerCount:     4,
		MaxInflightJobs: 1024,
		HandleType:      1,
		GPU:             gpuhal.NewNull(),
	}
}

// WithWorkerCount overrides the number of CPU worker goroutines.
func WithWorkerCount(n int) Option {
	return func(o *Options) { o.WorkerCount = n }
}

// WithMaxInflightJobs overrides the job/done queue capacity.
func WithMaxInflightJobs(n int) Option {
	return func(o *Options) { o.MaxInflightJobs = n }
}

// WithHandleType overrides the manager-wide handle type tag stored in
// every handle this manager issues.
func WithHandleType(t uint16) Option {
	return func(o *Options) { o.HandleType = t }
}

// WithGPU supplies the GPU collaborator used by module Init/Cleanup hooks.
func WithGPU(dev gpuhal.Device) Option {
	return func(o *Options) { o.GPU = dev }
}
