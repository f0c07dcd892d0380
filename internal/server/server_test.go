package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyfer/moneyfer/internal/app"
	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/schedule"
	"github.com/moneyfer/moneyfer/internal/store"
)

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	logger := logging.Discard()
	cfg := config.Config{AppName: "Moneyfer", StoreBackend: config.BackendMemory, IdempotencyTTL: time.Minute}
	application := app.New(store.NewMemoryBackend(), app.Options{
		Name:         cfg.AppName,
		JWTSecret:    "test-secret",
		LatencyScale: 0,
		Scheduler:    schedule.NewManual(),
	}, logger)
	application.Start(context.Background())
	t.Cleanup(application.Close)

	srv, err := New(cfg, application, nil, logger)
	require.NoError(t, err)
	return &client{t: t, app: srv.Handler()}
}

func TestHealthAndPing(t *testing.T) {
	c := newTestServer(t)

	status, body := c.do(fiber.MethodGet, "/healthz", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"].(map[string]any)["state"])

	status, body = c.do(fiber.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newTestServer(t)
	status, body := c.do(fiber.MethodGet, "/api/v1/wallets", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "missing bearer token", body["error"])
}

func TestPublicQuoteRoutes(t *testing.T) {
	c := newTestServer(t)

	status, body := c.do(fiber.MethodGet, "/api/v1/rates?from=USD&to=NGN", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1500.0, body["rate"])

	status, body = c.do(fiber.MethodGet, "/api/v1/countries?q=an", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["countries"])
}

func TestAccountLifecycle(t *testing.T) {
	c := newTestServer(t)

	status, body := c.do(fiber.MethodPost, "/api/v1/auth/signup", `{"email":"a@x.com","password":"secret1","name":"Ada"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	c.token = body["access_token"].(string)

	status, body = c.do(fiber.MethodGet, "/api/v1/me", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", body["email"])

	status, body = c.do(fiber.MethodGet, "/api/v1/wallets", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["wallets"], 3)

	status, body = c.do(fiber.MethodPost, "/api/v1/transfers",
		`{"recipient":"Bob","amount":25,"fromCurrency":"USD","toCurrency":"KES","rate":130,"fee":0.5,"country":"Kenya"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "pending", body["status"])
	id := body["id"].(string)

	status, body = c.do(fiber.MethodPatch, "/api/v1/transfers/"+id+"/status", `{"status":"completed"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "completed", body["status"])

	status, body = c.do(fiber.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", body["user"].(map[string]any)["email"])
	assert.Len(t, body["recent"], 1)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 1.0, summary["count"])

	status, _ = c.do(fiber.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = c.do(fiber.MethodGet, "/api/v1/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSendMoneyOverHTTP(t *testing.T) {
	c := newTestServer(t)
	status, body := c.do(fiber.MethodPost, "/api/v1/auth/signup", `{"email":"a@x.com","password":"secret1","name":"Ada"}`)
	require.Equal(t, fiber.StatusCreated, status)
	c.token = body["access_token"].(string)

	status, body = c.do(fiber.MethodPost, "/api/v1/send", "")
	require.Equal(t, fiber.StatusCreated, status)
	session := "/api/v1/send/" + body["session_id"].(string)
	act := func(payload string) map[string]any {
		status, body := c.do(fiber.MethodPost, session+"/actions", payload)
		require.Equal(t, fiber.StatusOK, status, body)
		return body["wizard"].(map[string]any)
	}

	act(`{"action":"select_country","value":"Nigeria"}`)
	act(`{"action":"advance"}`)
	act(`{"action":"select_method","value":"Mobile Money"}`)
	act(`{"action":"advance"}`)
	act(`{"action":"set_recipient","name":"Bob","account":"0011"}`)
	act(`{"action":"advance"}`)

	require.Eventually(t, func() bool {
		_, body := c.do(fiber.MethodGet, session, "")
		w := body["wizard"].(map[string]any)
		return w["rateLoading"] == false && w["rate"] == 1500.0
	}, 2*time.Second, 10*time.Millisecond)

	act(`{"action":"set_amount","value":"10"}`)
	act(`{"action":"advance"}`)
	act(`{"action":"select_route","value":"optimal"}`)
	act(`{"action":"advance"}`)
	act(`{"action":"select_payment","value":"USDC"}`)
	act(`{"action":"advance"}`)
	act(`{"action":"confirm_funding"}`)
	w := act(`{"action":"skip"}`)
	require.Equal(t, "confirm", w["step"])

	status, body = c.do(fiber.MethodPost, session+"/actions", `{"action":"complete"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	created := body["transfer"].(map[string]any)
	assert.Equal(t, "NGN", created["toCurrency"])
	assert.Equal(t, 10.0, created["amount"])
	assert.Equal(t, "pending", created["status"])

	status, _ = c.do(fiber.MethodGet, session, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = c.do(fiber.MethodGet, "/api/v1/transfers", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["transfers"], 1)
}
