package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/hoshichaam/account_backend_go/internal/models"
	"github.com/hoshichaam/account_backend_go/internal/services"
	"github.com/hoshichaam/account_backend_go/pkg/authutil"
	response "github.com/hoshichaam/account_backend_go/pkg/response"
)

const localsSession = "session"

// SessionRequired membaca token sesi dari header Authorization atau cookie
// identity provider, lalu menaruh models.Session di c.Locals.
// Token yang hilang/rusak dijawab in-band (HTTP 200, success=false).
func SessionRequired(secret, cookieName string, log logrus.FieldLogger) fiber.Handler {
	secret = strings.TrimSpace(secret)
	return func(c *fiber.Ctx) error {
		token := authutil.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cookieName != "" {
			token = strings.TrimSpace(c.Cookies(cookieName))
		}
		if token == "" {
			return response.Failure(c, services.StatusMessageError, services.MsgUnauthorizedSession)
		}

		claims, err := authutil.ParseSessionToken(token, secret)
		if err != nil {
			log.WithError(err).WithField("token", authutil.ShortToken(token)).Debug("session: token rejected")
			return response.Failure(c, services.StatusMessageError, services.MsgUnauthorizedSession)
		}

		c.Locals(localsSession, models.Session{
			Token: token,
			User:  models.SessionUser{ID: claims.Subject, Email: claims.Email},
		})
		return c.Next()
	}
}

func SessionFrom(c *fiber.Ctx) (models.Session, bool) {
	sess, ok := c.Locals(localsSession).(models.Session)
	return sess, ok
}

// WithSession menyuntikkan sesi yang sudah jadi (dipakai test handler).
func WithSession(sess models.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsSession, sess)
		return c.Next()
	}
}
