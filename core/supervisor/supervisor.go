package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"stremio-service/core/endpoint"
	"stremio-service/core/metrics"
	"stremio-service/core/process"
	"stremio-service/core/settings"

	"go.uber.org/zap"
)

const (
	defaultGracePeriod     = 3 * time.Second
	defaultSettlePeriod    = 6 * time.Second
	defaultEndpointTimeout = 1 * time.Second
	defaultKillTimeout     = 5 * time.Second
)

var errExitedEarly = errors.New("server process exited before announcing its endpoint")

// Supervisor owns the streaming server process.
//
// Start, Stop and Restart are serialized by the lifecycle lock; a caller waiting for it may give up
// through its context, but a call that acquired it runs to completion. The state itself sits behind
// a separate RWMutex that is only held for short reads and writes, so Status and Phase never wait
// for a transition in progress.
type Supervisor struct {
	cfg      process.ServerConfig
	launcher process.Launcher
	prober   settings.Prober
	logger   *zap.Logger
	metrics  metrics.Collector

	gracePeriod     time.Duration
	settlePeriod    time.Duration
	endpointTimeout time.Duration
	killTimeout     time.Duration

	lifecycle chan struct{}

	mu    sync.RWMutex
	state state
}

// New creates a supervisor for cfg. It starts in the stopped phase; processes left over from a
// previous run are not adopted.
func New(cfg process.ServerConfig, opts ...Option) (*Supervisor, error) {
	if cfg.IsZero() {
		return nil, NewError(ErrorCodeInvalidConfiguration, "Server config is not initialized").
			WithSuggestion("Build the config with process.ConfigAtDir")
	}

	s := &Supervisor{
		cfg:             cfg,
		logger:          zap.NewNop(),
		metrics:         metrics.NewNoop(),
		gracePeriod:     defaultGracePeriod,
		settlePeriod:    defaultSettlePeriod,
		endpointTimeout: defaultEndpointTimeout,
		killTimeout:     defaultKillTimeout,
		lifecycle:       make(chan struct{}, 1),
		state:           state{phase: PhaseStopped},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.launcher == nil {
		s.launcher = process.NewLauncher(s.logger)
	}
	if s.prober == nil {
		s.prober = settings.NewClient(0)
	}

	return s, nil
}

// Config returns the server config the supervisor launches.
func (s *Supervisor) Config() process.ServerConfig {
	return s.cfg
}

// Start launches the server and waits until it is ready. If the server is already running its
// info is returned without side effects.
func (s *Supervisor) Start(ctx context.Context) (ServerInfo, error) {
	if err := s.acquire(ctx); err != nil {
		return ServerInfo{}, err
	}
	defer s.release()

	return s.start(context.WithoutCancel(ctx), PhaseStarting)
}

// Stop kills the running server and waits the settle period. It reports whether a server was
// attached. A kill failure is returned as STOP_FAILED, but the state is stopped either way.
func (s *Supervisor) Stop(ctx context.Context) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	return s.stop(PhaseStopped)
}

// Restart stops the server if it runs and starts it again within a single lifecycle turn.
// A failed stop is logged and the start is still attempted.
func (s *Supervisor) Restart(ctx context.Context) (ServerInfo, error) {
	if err := s.acquire(ctx); err != nil {
		return ServerInfo{}, err
	}
	defer s.release()

	s.metrics.Restart()
	s.logger.Info("restarting server")

	s.mu.Lock()
	s.transitionLocked(PhaseRestarting, s.state.proc, s.state.info)
	s.mu.Unlock()

	if _, err := s.stop(PhaseRestarting); err != nil {
		s.logger.Error("failed to stop server during restart", zap.Error(err))
	}

	return s.start(context.WithoutCancel(ctx), PhaseRestarting)
}

// Status returns the info of the running server, or nil. A server that exited on its own is
// detected here and the state moves to stopped.
func (s *Supervisor) Status() *ServerInfo {
	_, info := s.Snapshot()
	return info
}

// Snapshot returns the phase together with the info of the running server, both read from the
// same state. info is nil unless the phase is running.
func (s *Supervisor) Snapshot() (Phase, *ServerInfo) {
	s.mu.RLock()
	if s.state.phase != PhaseRunning {
		phase := s.state.phase
		s.mu.RUnlock()
		return phase, nil
	}
	if s.state.proc.Alive() {
		info := s.state.info
		s.mu.RUnlock()
		return PhaseRunning, &info
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have changed the state between the two locks.
	if s.state.phase != PhaseRunning {
		return s.state.phase, nil
	}
	if s.state.proc.Alive() {
		info := s.state.info
		return PhaseRunning, &info
	}

	s.logger.Warn("server process exited unexpectedly",
		zap.Int("pid", s.state.proc.Pid()),
		zap.Error(s.state.proc.ExitErr()),
	)
	s.transitionLocked(PhaseStopped, nil, ServerInfo{})
	return PhaseStopped, nil
}

// Phase returns the current state variant.
func (s *Supervisor) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.phase
}

// Close stops the server on shutdown.
func (s *Supervisor) Close(ctx context.Context) error {
	stopped, err := s.Stop(ctx)
	if stopped {
		s.logger.Info("server stopped on shutdown")
	}
	return err
}

func (s *Supervisor) acquire(ctx context.Context) error {
	// A free lock is taken even when ctx is already done.
	select {
	case s.lifecycle <- struct{}{}:
		return nil
	default:
	}

	select {
	case s.lifecycle <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for server lifecycle lock: %w", ctx.Err())
	}
}

func (s *Supervisor) release() {
	<-s.lifecycle
}

// start must be called with the lifecycle lock held.
func (s *Supervisor) start(ctx context.Context, transient Phase) (ServerInfo, error) {
	s.mu.Lock()
	if s.state.phase == PhaseRunning {
		if s.state.proc.Alive() {
			info := s.state.info
			s.mu.Unlock()
			return info, nil
		}
		s.logger.Warn("server process exited unexpectedly", zap.Int("pid", s.state.proc.Pid()))
	}
	s.transitionLocked(transient, nil, ServerInfo{})
	s.mu.Unlock()

	begin := time.Now()
	info, proc, err := s.launch(ctx)
	code := GetErrorCode(err)
	s.metrics.StartDuration(time.Since(begin), string(code))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.metrics.Error(string(code))
		s.transitionLocked(PhaseStopped, nil, ServerInfo{})
		return ServerInfo{}, err
	}

	s.transitionLocked(PhaseRunning, proc, info)
	s.logger.Info("server started",
		zap.Int("pid", proc.Pid()),
		zap.String("version", info.Version),
		zap.String("base_url", info.BaseURL),
		zap.Duration("took", time.Since(begin)),
	)
	return info, nil
}

// launch spawns the server and drives it to readiness. On any failure after the spawn the process
// is killed before returning.
func (s *Supervisor) launch(ctx context.Context) (ServerInfo, process.Process, error) {
	proc, err := s.launcher.Launch(s.cfg)
	if err != nil {
		return ServerInfo{}, nil, ErrSpawnFailed(s.cfg.Runtime(), err)
	}

	cell := endpoint.NewCell()
	go endpoint.Watch(proc.Stdout(), cell, s.logger.With(
		zap.String("component", "server.js"),
		zap.Int("pid", proc.Pid()),
	))

	grace := time.NewTimer(s.gracePeriod)
	select {
	case <-grace.C:
	case <-proc.Done():
		grace.Stop()
		s.abort(proc)
		return ServerInfo{}, nil, ErrNotReady(proc.Pid(), s.gracePeriod.String(), errExitedEarly).
			WithContext("exit", fmt.Sprint(proc.ExitErr()))
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.endpointTimeout)
	base, err := s.awaitEndpoint(waitCtx, cell, proc)
	cancel()
	if err != nil {
		s.abort(proc)
		return ServerInfo{}, nil, ErrNotReady(proc.Pid(), (s.gracePeriod + s.endpointTimeout).String(), err)
	}
	s.metrics.EndpointDiscovered()

	probeStart := time.Now()
	st, err := s.prober.Fetch(ctx, base)
	s.metrics.ProbeDuration(time.Since(probeStart), err)
	if err != nil {
		s.abort(proc)
		return ServerInfo{}, nil, ErrSettingsFailed(base.String(), err)
	}

	return ServerInfo{
		Config:  s.cfg,
		Version: st.Values.ServerVersion,
		BaseURL: st.BaseURL,
	}, proc, nil
}

func (s *Supervisor) awaitEndpoint(ctx context.Context, cell *endpoint.Cell, proc process.Process) (*url.URL, error) {
	select {
	case <-cell.Done():
		return cell.Get(), nil
	case <-proc.Done():
		return nil, errExitedEarly
	case <-ctx.Done():
		return nil, fmt.Errorf("no endpoint announced: %w", ctx.Err())
	}
}

// abort kills a process from a failed start and waits a bounded time for it to exit.
func (s *Supervisor) abort(proc process.Process) {
	if err := proc.Kill(); err != nil {
		s.logger.Error("failed to kill server after failed start", zap.Int("pid", proc.Pid()), zap.Error(err))
		return
	}

	timer := time.NewTimer(s.killTimeout)
	defer timer.Stop()
	select {
	case <-proc.Done():
	case <-timer.C:
		s.logger.Warn("server did not exit after kill", zap.Int("pid", proc.Pid()))
	}
}

// stop must be called with the lifecycle lock held. next is the phase to settle in.
func (s *Supervisor) stop(next Phase) (bool, error) {
	s.mu.Lock()
	proc := s.state.proc
	if proc != nil && s.state.phase == PhaseRunning {
		s.transitionLocked(PhaseStopping, proc, s.state.info)
	}
	s.mu.Unlock()

	if proc == nil {
		return false, nil
	}

	begin := time.Now()
	var stopErr error
	if err := proc.Kill(); err != nil {
		stopErr = ErrStopFailed(proc.Pid(), err)
		s.logger.Error("failed to kill server", zap.Int("pid", proc.Pid()), zap.Error(err))
		s.metrics.Error(string(ErrorCodeStopFailed))
	}

	time.Sleep(s.settlePeriod)

	s.mu.Lock()
	s.transitionLocked(next, nil, ServerInfo{})
	s.mu.Unlock()

	s.metrics.StopDuration(time.Since(begin), string(GetErrorCode(stopErr)))
	s.logger.Info("server stopped", zap.Int("pid", proc.Pid()), zap.Duration("took", time.Since(begin)))

	return true, stopErr
}

// transitionLocked must be called with mu held for writing.
func (s *Supervisor) transitionLocked(phase Phase, proc process.Process, info ServerInfo) {
	from := s.state.phase
	s.state = state{phase: phase, proc: proc, info: info}
	if from != phase {
		s.metrics.StateTransition(from.String(), phase.String())
		s.logger.Debug("server state changed", zap.String("from", from.String()), zap.String("to", phase.String()))
	}
}
