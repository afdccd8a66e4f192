package profiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// profilerConfig holds construction-only settings.
type profilerConfig struct {
	registerer prometheus.Registerer
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler, cfg *profilerConfig)

// WithInterval sets how often statistics are published. Values <= 0 are ignored.
//
// Parameters:
//   - interval: the update interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler, _ *profilerConfig) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger statistics are written to.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler, _ *profilerConfig) {
		p.logger = logger
	}
}

// WithRegisterer sets where the Prometheus collectors are registered.
// A nil registerer keeps the collectors unregistered.
//
// Parameters:
//   - registerer: the Prometheus registerer
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithRegisterer(registerer prometheus.Registerer) ProfilerBuilderOption {
	return func(_ *Profiler, cfg *profilerConfig) {
		cfg.registerer = registerer
	}
}

// WithClock replaces the time source. Intended for tests.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler, _ *profilerConfig) {
		if now != nil {
			p.now = now
		}
	}
}
