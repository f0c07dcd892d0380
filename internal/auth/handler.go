package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/identity"
	"github.com/moneyfer/moneyfer/internal/notification"
)

// SessionState is told when the signed-in user changes.
type SessionState interface {
	SetUser(ctx context.Context, user *identity.User)
}

// Handler exposes signup, login, logout and profile endpoints.
type Handler struct {
	ids      *identity.Service
	tokens   *TokenService
	state    SessionState
	notifier notification.Notifier
	logger   *slog.Logger
	onLogout func(userID string)
}

// NewHandler builds the auth handler. onLogout, when set, runs after the
// session has ended.
func NewHandler(ids *identity.Service, tokens *TokenService, state SessionState, notifier notification.Notifier, logger *slog.Logger, onLogout func(userID string)) *Handler {
	return &Handler{ids: ids, tokens: tokens, state: state, notifier: notifier, logger: logger, onLogout: onLogout}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type kycRequest struct {
	Verified *bool `json:"verified"`
}

type sessionResponse struct {
	User identity.User `json:"user"`
	Token
}

// Signup registers and signs in a new user.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Signup(c.UserContext(), identity.Registration{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		return toHTTPError(err)
	}
	resp, err := h.establish(c.UserContext(), user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// Login signs in an existing user.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	resp, err := h.establish(c.UserContext(), user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Logout ends the session and clears cached account data.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if h.state != nil {
		h.state.SetUser(c.UserContext(), nil)
	} else if err := h.ids.Logout(c.UserContext()); err != nil {
		return toHTTPError(err)
	}
	if h.onLogout != nil {
		h.onLogout(userID)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok, err := h.ids.CurrentUser(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not signed in")
	}
	return c.Status(http.StatusOK).JSON(user.Public())
}

// UpdateKYC records the identity verification result.
func (h *Handler) UpdateKYC(c *fiber.Ctx) error {
	var req kycRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Verified == nil {
		return fiber.NewError(http.StatusBadRequest, "verified is required")
	}
	user, err := h.ids.UpdateKYCStatus(c.UserContext(), *req.Verified)
	if err != nil {
		return toHTTPError(err)
	}
	if h.state != nil {
		h.state.SetUser(c.UserContext(), &user)
	}
	return c.Status(http.StatusOK).JSON(user.Public())
}

func (h *Handler) establish(ctx context.Context, user identity.User) (sessionResponse, error) {
	session, ok := h.ids.CurrentSession(ctx)
	if !ok {
		return sessionResponse{}, errors.New("session was not started")
	}
	token, err := h.tokens.Issue(user, session)
	if err != nil {
		return sessionResponse{}, err
	}
	if h.state != nil {
		h.state.SetUser(ctx, &user)
	}
	if h.notifier != nil {
		msg := notification.Message{Kind: notification.KindSessionStarted, Destination: user.Email, Body: "Signed in to Moneyfer"}
		if err := h.notifier.Send(ctx, msg); err != nil && h.logger != nil {
			h.logger.Warn("session notification failed", slog.Any("error", err))
		}
	}
	return sessionResponse{User: user.Public(), Token: token}, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, apperr.Message(err))
	case errors.Is(err, apperr.ErrConflict):
		return fiber.NewError(http.StatusConflict, apperr.Message(err))
	case errors.Is(err, apperr.ErrUnauthorized):
		return fiber.NewError(http.StatusUnauthorized, apperr.Message(err))
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, apperr.Message(err))
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
