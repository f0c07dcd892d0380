package wallet

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/apperr"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service  *Service
	onChange func(ctx context.Context)
}

// NewHandler builds a wallet HTTP handler. onChange, when set, runs after a
// successful balance update so cached views can refresh.
func NewHandler(service *Service, onChange func(ctx context.Context)) *Handler {
	return &Handler{service: service, onChange: onChange}
}

type updateRequest struct {
	Amount *float64 `json:"amount"`
}

// List returns all wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	wallets, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallets":       wallets,
		"total_balance": TotalValue(wallets),
	})
}

// Update overwrites a wallet balance.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Amount == nil {
		return fiber.NewError(http.StatusBadRequest, "amount is required")
	}
	w, err := h.service.Update(c.UserContext(), c.Params("walletId"), *req.Amount)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, apperr.Message(err))
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if h.onChange != nil {
		h.onChange(c.UserContext())
	}
	return c.Status(http.StatusOK).JSON(w)
}
