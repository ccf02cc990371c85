package supervisor

import (
	"time"

	"stremio-service/core/metrics"
	"stremio-service/core/process"
	"stremio-service/core/settings"

	"go.uber.org/zap"
)

// Option configures the Supervisor
type Option func(*Supervisor)

// WithLauncher sets the process launcher
func WithLauncher(l process.Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// WithProber sets the settings prober
func WithProber(p settings.Prober) Option {
	return func(s *Supervisor) {
		s.prober = p
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// WithMetricsCollector sets the metrics collector
func WithMetricsCollector(mc metrics.Collector) Option {
	return func(s *Supervisor) {
		s.metrics = mc
	}
}

// WithGracePeriod sets how long to wait after spawning before looking for the endpoint
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.gracePeriod = d
	}
}

// WithSettlePeriod sets how long to wait after a kill before the server counts as stopped
func WithSettlePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.settlePeriod = d
	}
}

// WithEndpointTimeout sets the extra wait for the endpoint once the grace period is over
func WithEndpointTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.endpointTimeout = d
	}
}

// WithKillTimeout bounds how long a failed start waits for the killed process to exit
func WithKillTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.killTimeout = d
	}
}
