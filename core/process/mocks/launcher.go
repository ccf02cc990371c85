package mocks

import (
	"github.com/stretchr/testify/mock"

	"stremio-service/core/process"
)

// Launcher is a mock implementation of process.Launcher
type Launcher struct {
	mock.Mock
}

func (m *Launcher) Launch(cfg process.ServerConfig) (process.Process, error) {
	args := m.Called(cfg)
	if p, ok := args.Get(0).(process.Process); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
