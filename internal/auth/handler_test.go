package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyfer/moneyfer/internal/identity"
	"github.com/moneyfer/moneyfer/internal/latency"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/store"
)

type recordingState struct {
	mu    sync.Mutex
	users []*identity.User
}

func (r *recordingState) SetUser(_ context.Context, user *identity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
}

func setupAuthApp(t *testing.T) (*fiber.App, *recordingState, *[]string) {
	t.Helper()
	st := store.New(store.NewMemoryBackend(), logging.Discard())
	ids := identity.NewService(identity.NewStoreRepository(st), latency.None(), identity.DefaultSessionTTL)
	state := &recordingState{}
	var loggedOut []string
	h := NewHandler(ids, NewTokenService("secret", "moneyfer"), state, nil, logging.Discard(), func(userID string) {
		loggedOut = append(loggedOut, userID)
	})

	app := fiber.New()
	app.Post("/auth/signup", h.Signup)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/logout", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-x")
		return c.Next()
	}, h.Logout)
	app.Get("/me", h.Me)
	app.Post("/me/kyc", h.UpdateKYC)
	return app, state, &loggedOut
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		out["message"] = string(raw)
	}
	return resp.StatusCode, out
}

func TestSignupLoginLogoutFlow(t *testing.T) {
	app, state, loggedOut := setupAuthApp(t)

	status, body := send(t, app, fiber.MethodPost, "/auth/signup", `{"email":"a@x.com","password":"secret1","name":"Ada"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.NotEmpty(t, body["access_token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	status, body = send(t, app, fiber.MethodPost, "/auth/signup", `{"email":"a@x.com","password":"secret1","name":"Ada"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "user with this email already exists", body["message"])

	status, _ = send(t, app, fiber.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong-pass"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = send(t, app, fiber.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, user["id"], body["user"].(map[string]any)["id"])

	status, body = send(t, app, fiber.MethodPost, "/me/kyc", `{"verified":true}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["kycVerified"])

	status, _ = send(t, app, fiber.MethodPost, "/auth/logout", "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, []string{"user-x"}, *loggedOut)

	state.mu.Lock()
	defer state.mu.Unlock()
	require.Len(t, state.users, 4)
	assert.NotNil(t, state.users[0])
	assert.Nil(t, state.users[3])
}

func TestSignupValidation(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	status, body := send(t, app, fiber.MethodPost, "/auth/signup", `{"email":"a@x.com","password":"123","name":"Ada"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "password must be at least 6 characters", body["message"])
}

func TestMeRequiresSession(t *testing.T) {
	app, _, _ := setupAuthApp(t)
	status, _ := send(t, app, fiber.MethodGet, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUpdateKYCRequiresFlag(t *testing.T) {
	app, _, _ := setupAuthApp(t)
	status, _ := send(t, app, fiber.MethodPost, "/me/kyc", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
