package metrics

import (
	"time"
)

// Collector defines the interface for collecting supervisor metrics
type Collector interface {
	// StateTransition records a supervisor state change
	StateTransition(from, to string)

	// StartDuration records how long a start attempt took; code is empty on success
	StartDuration(duration time.Duration, code string)

	// StopDuration records how long a stop took, settle window included
	StopDuration(duration time.Duration, code string)

	// ProbeDuration records a settings probe
	ProbeDuration(duration time.Duration, err error)

	// Error records a supervisor error by code
	Error(code string)

	// EndpointDiscovered records a published server endpoint
	EndpointDiscovered()

	// Restart records a restart request
	Restart()
}

type noopCollector struct{}

func (noopCollector) StateTransition(from, to string)                   {}
func (noopCollector) StartDuration(duration time.Duration, code string) {}
func (noopCollector) StopDuration(duration time.Duration, code string)  {}
func (noopCollector) ProbeDuration(duration time.Duration, err error)   {}
func (noopCollector) Error(code string)                                 {}
func (noopCollector) EndpointDiscovered()                               {}
func (noopCollector) Restart()                                          {}

// NewNoop creates a collector that discards everything.
func NewNoop() Collector {
	return noopCollector{}
}

// New returns a Prometheus collector when cfg is enabled, a no-op one otherwise.
func New(cfg Config) Collector {
	if !cfg.Enabled {
		return NewNoop()
	}
	return NewPrometheusCollector(cfg.Namespace)
}

func result(code string) string {
	if code == "" {
		return "success"
	}
	return code
}
