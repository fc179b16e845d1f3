package sched

// kernelOptions holds configuration resolved at Init time.
type kernelOptions struct {
	mlfqs     bool
	logger    Logger
	metrics   *Metrics
	timeSlice int
}

// KernelOption configures a Kernel at Init time.
type KernelOption interface {
	applyKernel(*kernelOptions)
}

type kernelOptionFunc func(*kernelOptions)

func (f kernelOptionFunc) applyKernel(opts *kernelOptions) { f(opts) }

// WithMLFQS selects the multi-level feedback queue scheduler in place of
// priority scheduling with donation (spec.md §4.6, the "-o mlfqs" boot
// flag's effect).
func WithMLFQS(enabled bool) KernelOption {
	return kernelOptionFunc(func(opts *kernelOptions) {
		opts.mlfqs = enabled
	})
}

// WithLogger installs a structured logger; with nil (the default) the
// Kernel logs through the package-level logger set by SetStructuredLogger,
// which discards everything when none is installed.
func WithLogger(logger Logger) KernelOption {
	return kernelOptionFunc(func(opts *kernelOptions) {
		opts.logger = logger
	})
}

// WithMetrics enables scheduler metrics collection (context-switch counts,
// donation-chain depths, queue depths). Disabled by default.
func WithMetrics(enabled bool) KernelOption {
	return kernelOptionFunc(func(opts *kernelOptions) {
		if enabled {
			opts.metrics = newMetrics()
		} else {
			opts.metrics = nil
		}
	})
}

// WithTimeSlice sets the number of ticks a thread runs before it becomes
// preemptible in favor of a ready peer at the same effective priority
// (spec.md §4.2(c)); a strictly higher-priority thread can always preempt
// regardless of how long the current thread has run. Ticks <= 0 disable
// time-slice preemption, leaving priority-only preemption.
func WithTimeSlice(ticks int) KernelOption {
	return kernelOptionFunc(func(opts *kernelOptions) {
		opts.timeSlice = ticks
	})
}

// resolveKernelOptions applies options over the default configuration.
func resolveKernelOptions(opts []KernelOption) kernelOptions {
	cfg := kernelOptions{
		timeSlice: 4,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyKernel(&cfg)
	}
	return cfg
}
