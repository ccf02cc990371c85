package server

import (
	"context"

	"stremio-service/core/supervisor"

	"go.uber.org/zap"
)

// Supervisor is the part of supervisor.Supervisor the feature drives.
type Supervisor interface {
	Start(ctx context.Context) (supervisor.ServerInfo, error)
	Stop(ctx context.Context) (bool, error)
	Restart(ctx context.Context) (supervisor.ServerInfo, error)
	Snapshot() (supervisor.Phase, *supervisor.ServerInfo)
}

// Notifier is told when a lifecycle action completed.
type Notifier interface {
	Trigger()
}

// Service runs lifecycle actions and notifies the status poller afterwards.
type Service struct {
	sup    Supervisor
	notify Notifier
	logger *zap.Logger
}

// NewService creates a new server service.
func NewService(sup Supervisor, notify Notifier, logger *zap.Logger) *Service {
	return &Service{sup: sup, notify: notify, logger: logger}
}

// State is the current phase together with the running server info, if any.
type State struct {
	Phase supervisor.Phase       `json:"phase"`
	Info  *supervisor.ServerInfo `json:"info"`
}

// State returns the current server state. It runs the liveness check.
func (s *Service) State() State {
	phase, info := s.sup.Snapshot()
	return State{Phase: phase, Info: info}
}

// Start starts the server.
func (s *Service) Start(ctx context.Context) (supervisor.ServerInfo, error) {
	defer s.notify.Trigger()
	info, err := s.sup.Start(ctx)
	if err != nil {
		s.logger.Error("Failed to start server", zap.Error(err))
	}
	return info, err
}

// Stop stops the server.
func (s *Service) Stop(ctx context.Context) (bool, error) {
	defer s.notify.Trigger()
	stopped, err := s.sup.Stop(ctx)
	if err != nil {
		s.logger.Error("Failed to stop server", zap.Error(err))
	}
	return stopped, err
}

// Restart restarts the server.
func (s *Service) Restart(ctx context.Context) (supervisor.ServerInfo, error) {
	defer s.notify.Trigger()
	info, err := s.sup.Restart(ctx)
	if err != nil {
		s.logger.Error("Failed to restart server", zap.Error(err))
	}
	return info, err
}
