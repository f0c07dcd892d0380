package transfer

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/apperr"
)

// Handler exposes transfer endpoints.
type Handler struct {
	service  *Service
	onChange func(ctx context.Context, created *Transfer)
}

// NewHandler constructs a transfer handler. onChange, when set, runs after
// every successful mutation; created is non-nil for new transfers.
func NewHandler(service *Service, onChange func(ctx context.Context, created *Transfer)) *Handler {
	return &Handler{service: service, onChange: onChange}
}

type statusRequest struct {
	Status string `json:"status"`
}

// List returns transfers filtered by ?status= and ?q= with a summary of the
// unfiltered history.
func (h *Handler) List(c *fiber.Ctx) error {
	transfers, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transfers": Filter(transfers, c.Query("status", FilterAll), c.Query("q")),
		"summary":   Summarize(transfers),
	})
}

// Create records a new pending transfer.
func (h *Handler) Create(c *fiber.Ctx) error {
	var draft Draft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	t, err := h.service.Create(c.UserContext(), draft)
	if err != nil {
		return toHTTPError(err)
	}
	if h.onChange != nil {
		h.onChange(c.UserContext(), &t)
	}
	return c.Status(http.StatusCreated).JSON(t)
}

// UpdateStatus changes the status of a transfer.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	t, err := h.service.UpdateStatus(c.UserContext(), c.Params("transferId"), status)
	if err != nil {
		return toHTTPError(err)
	}
	if h.onChange != nil {
		h.onChange(c.UserContext(), nil)
	}
	return c.Status(http.StatusOK).JSON(t)
}

// Reverse marks a transfer as reversed.
func (h *Handler) Reverse(c *fiber.Ctx) error {
	t, err := h.service.Reverse(c.UserContext(), c.Params("transferId"))
	if err != nil {
		return toHTTPError(err)
	}
	if h.onChange != nil {
		h.onChange(c.UserContext(), nil)
	}
	return c.Status(http.StatusOK).JSON(t)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, apperr.Message(err))
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, apperr.Message(err))
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
