package supervisor

import (
	"stremio-service/core/process"
)

// Phase names the variant of the supervisor state.
type Phase string

const (
	PhaseStopped    Phase = "stopped"
	PhaseStarting   Phase = "starting"
	PhaseRestarting Phase = "restarting"
	PhaseRunning    Phase = "running"
	PhaseStopping   Phase = "stopping"
)

func (p Phase) String() string { return string(p) }

// Transient reports whether p is only observable while a lifecycle call is in flight.
func (p Phase) Transient() bool {
	return p == PhaseStarting || p == PhaseRestarting || p == PhaseStopping
}

// state is the tagged union guarded by Supervisor.mu. proc and info are only meaningful when
// phase is PhaseRunning, except while stopping or restarting where proc is kept until it was
// killed.
type state struct {
	phase Phase
	proc  process.Process
	info  ServerInfo
}
