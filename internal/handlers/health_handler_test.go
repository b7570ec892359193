package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	var down error
	log, hook := test.NewNullLogger()
	h := NewHealthHandler(healthFunc(func(ctx context.Context) error { return down }), log)

	app := fiber.New()
	app.Get("/healthz", h.Live)
	app.Get("/readyz", h.Ready)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"data":{"identity":"ok"}}`, string(body))

	down = errors.New("connection refused")
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"message":"identity provider unavailable"`)
	assert.Len(t, hook.AllEntries(), 1)
}
