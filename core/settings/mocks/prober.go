package mocks

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"stremio-service/core/settings"
)

// Prober is a mock implementation of settings.Prober
type Prober struct {
	mock.Mock
}

func (m *Prober) Fetch(ctx context.Context, base *url.URL) (*settings.Settings, error) {
	args := m.Called(ctx, base)
	if s, ok := args.Get(0).(*settings.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
