package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	response "github.com/hoshichaam/account_backend_go/pkg/response"
)

type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	idp     HealthChecker
	log     logrus.FieldLogger
	timeout time.Duration
}

func NewHealthHandler(idp HealthChecker, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{idp: idp, log: log, timeout: 5 * time.Second}
}

// GET /healthz
func (h *HealthHandler) Live(c *fiber.Ctx) error { return c.SendString("ok") }

// GET /readyz
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.idp.Health(ctx); err != nil {
		h.log.WithError(err).Warn("readyz: identity provider unavailable")
		return response.Error(c, fiber.StatusServiceUnavailable, "identity provider unavailable")
	}
	return response.OK(c, fiber.Map{"identity": "ok"})
}
