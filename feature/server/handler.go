package server

import (
	"errors"

	"stremio-service/core/logger"
	"stremio-service/core/supervisor"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for server lifecycle actions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the server routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/server")
	group.Get("/", h.HandleState)
	group.Post("/start", h.HandleStart)
	group.Post("/stop", h.HandleStop)
	group.Post("/restart", h.HandleRestart)
}

// HandleState returns the current phase and server info.
// @Summary Server State
// @Tags server
// @Produce json
// @Success 200 {object} State
// @Router /server [get]
func (h *Handler) HandleState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleStart starts the streaming server.
// @Summary Start Server
// @Description Spawns the streaming server and waits until it answers. Returns immediately if it already runs.
// @Tags server
// @Produce json
// @Success 200 {object} supervisor.ServerInfo
// @Failure 500 {object} map[string]string "Start failed"
// @Router /server/start [post]
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Start requested")

	info, err := h.service.Start(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(info)
}

// HandleStop stops the streaming server.
// @Summary Stop Server
// @Tags server
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 500 {object} map[string]string "Stop failed"
// @Router /server/stop [post]
func (h *Handler) HandleStop(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Stop requested")

	stopped, err := h.service.Stop(c.UserContext())
	if err != nil {
		return errorResponse(c, err, fiber.Map{"stopped": stopped})
	}
	return c.JSON(fiber.Map{"stopped": stopped})
}

// HandleRestart restarts the streaming server.
// @Summary Restart Server
// @Tags server
// @Produce json
// @Success 200 {object} supervisor.ServerInfo
// @Failure 500 {object} map[string]string "Restart failed"
// @Router /server/restart [post]
func (h *Handler) HandleRestart(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Restart requested")

	info, err := h.service.Restart(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(info)
}

func errorResponse(c *fiber.Ctx, err error, extra ...fiber.Map) error {
	body := fiber.Map{"error": err.Error()}
	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}

	var se *supervisor.Error
	if errors.As(err, &se) {
		body["code"] = se.Code
		body["message"] = se.Message
		if se.Suggestion != "" {
			body["suggestion"] = se.Suggestion
		}
	}

	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
