// internal/handlers/account_handler.go
package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/hoshichaam/account_backend_go/internal/middleware"
	"github.com/hoshichaam/account_backend_go/internal/models"
	"github.com/hoshichaam/account_backend_go/internal/services"
	"github.com/hoshichaam/account_backend_go/pkg/authutil"
	response "github.com/hoshichaam/account_backend_go/pkg/response"
)

const endpointUpdatePassword = "updatePassword"

type AccountHandler struct {
	svc *services.PasswordService
	log logrus.FieldLogger
}

func NewAccountHandler(s *services.PasswordService, log logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{svc: s, log: log}
}

// POST /api/v1/account/password
func (h *AccountHandler) UpdatePassword(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return h.fail(c, sess, errors.New("session context missing"))
	}

	var req models.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, sess, fmt.Errorf("parse body: %w", err))
	}

	email, err := h.svc.ChangePassword(c.UserContext(), sess, req)
	if err != nil {
		return h.fail(c, sess, err)
	}
	return response.Success(c, response.Envelope{"accountEmail": email})
}

// fail selalu jawab HTTP 200 + success=false. Hanya error yang tidak
// terklasifikasi yang ditulis ke log.
func (h *AccountHandler) fail(c *fiber.Ctx, sess models.Session, err error) error {
	ce := services.AsChangeError(err)
	if ce.Unclassified() {
		h.log.WithFields(logrus.Fields{
			"endpoint":  endpointUpdatePassword,
			"at":        time.Now().UTC().Format(time.RFC3339Nano),
			"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
			"email":     authutil.MaskEmail(sess.User.Email),
		}).WithError(err).Error("endpoint unsuccessful")
	}
	return response.Failure(c, ce.StatusMessage, ce.Message)
}
