package status

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"stremio-service/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const keepAlive = 15 * time.Second

// Handler serves the poller snapshots.
type Handler struct {
	poller *Poller
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(poller *Poller, logger *zap.Logger) *Handler {
	return &Handler{poller: poller, logger: logger}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/status")
	group.Get("/", h.HandleLatest)
	group.Get("/events", h.HandleEvents)
}

// HandleLatest returns the latest snapshot.
// @Summary Latest Server Status
// @Tags status
// @Produce json
// @Success 200 {object} Snapshot
// @Router /status [get]
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	return c.JSON(h.poller.Latest())
}

// HandleEvents streams snapshots as server-sent events, starting with the latest one.
// @Summary Server Status Events
// @Tags status
// @Produce text/event-stream
// @Router /status/events [get]
func (h *Handler) HandleEvents(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	updates, cancel := h.poller.Subscribe()
	first := h.poller.Latest()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		l.Debug("Status stream opened")

		if err := writeEvent(w, first); err != nil {
			return
		}

		ping := time.NewTicker(keepAlive)
		defer ping.Stop()

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					l.Debug("Status stream closed by poller")
					return
				}
				if err := writeEvent(w, snap); err != nil {
					l.Debug("Status stream client gone", zap.Error(err))
					return
				}
			case <-ping.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
