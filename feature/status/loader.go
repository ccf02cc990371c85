package status

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	poller  *Poller
	handler *Handler
}

// NewFeature creates the status feature around an existing poller.
func NewFeature(poller *Poller, logger *zap.Logger) *Feature {
	return &Feature{poller: poller, handler: NewHandler(poller, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
