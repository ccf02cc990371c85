package server

import (
	"context"
	"sync/atomic"

	"stremio-service/core/supervisor"

	"github.com/stretchr/testify/mock"
)

type mockSupervisor struct {
	mock.Mock
}

func (m *mockSupervisor) Start(ctx context.Context) (supervisor.ServerInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(supervisor.ServerInfo), args.Error(1)
}

func (m *mockSupervisor) Stop(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockSupervisor) Restart(ctx context.Context) (supervisor.ServerInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(supervisor.ServerInfo), args.Error(1)
}

func (m *mockSupervisor) Snapshot() (supervisor.Phase, *supervisor.ServerInfo) {
	args := m.Called()
	info, _ := args.Get(1).(*supervisor.ServerInfo)
	return args.Get(0).(supervisor.Phase), info
}

type countingNotifier struct {
	n atomic.Int32
}

func (c *countingNotifier) Trigger() { c.n.Add(1) }
