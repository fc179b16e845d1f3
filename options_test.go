package sched

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKernelOptionsDefaults(t *testing.T) {
	cfg := resolveKernelOptions(nil)
	assert.False(t, cfg.mlfqs)
	assert.Nil(t, cfg.logger)
	assert.Nil(t, cfg.metrics)
	assert.Equal(t, 4, cfg.timeSlice)
}

func TestResolveKernelOptionsAppliesOverrides(t *testing.T) {
	logger := NewWriterLogger(LogLevelInfo, io.Discard)
	cfg := resolveKernelOptions([]KernelOption{
		WithMLFQS(true),
		WithLogger(logger),
		WithMetrics(true),
		WithTimeSlice(8),
	})
	assert.True(t, cfg.mlfqs)
	assert.Same(t, logger, cfg.logger)
	assert.NotNil(t, cfg.metrics)
	assert.Equal(t, 8, cfg.timeSlice)
}

func TestResolveKernelOptionsSkipsNilOption(t *testing.T) {
	cfg := resolveKernelOptions([]KernelOption{nil, WithMLFQS(true)})
	assert.True(t, cfg.mlfqs)
}

func TestWithMetricsFalseClearsMetrics(t *testing.T) {
	cfg := resolveKernelOptions([]KernelOption{WithMetrics(true), WithMetrics(false)})
	assert.Nil(t, cfg.metrics)
}
