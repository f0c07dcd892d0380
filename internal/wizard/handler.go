package wizard

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/transfer"
)

// Handler exposes send-money sessions over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler builds a wizard HTTP handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

type actionRequest struct {
	Action  string `json:"action"`
	Value   string `json:"value"`
	Name    string `json:"name"`
	Account string `json:"account"`
	Details string `json:"details"`
}

// Start opens a session for the caller.
func (h *Handler) Start(c *fiber.Ctx) error {
	owner, _ := c.Locals("user_id").(string)
	id, w := h.registry.Start(owner)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"session_id": id,
		"wizard":     w.Snapshot(),
	})
}

// Get renders the current state of a session.
func (h *Handler) Get(c *fiber.Ctx) error {
	owner, _ := c.Locals("user_id").(string)
	w, err := h.registry.Get(owner, c.Params("sessionId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"session_id": c.Params("sessionId"),
		"wizard":     w.Snapshot(),
	})
}

// Act applies one user action to a session.
func (h *Handler) Act(c *fiber.Ctx) error {
	owner, _ := c.Locals("user_id").(string)
	id := c.Params("sessionId")
	w, err := h.registry.Get(owner, id)
	if err != nil {
		return toHTTPError(err)
	}

	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	var created *transfer.Transfer
	exited := false
	switch req.Action {
	case "search":
		err = w.SearchCountries(req.Value)
	case "select_country":
		err = w.SelectCountry(req.Value)
	case "select_method":
		err = w.SelectMethod(req.Value)
	case "select_bank":
		err = w.SelectBank(req.Value)
	case "set_recipient":
		err = w.SetRecipient(req.Name, req.Account)
	case "set_amount":
		err = w.SetAmount(req.Value)
	case "select_route":
		err = w.SelectRoute(req.Value)
	case "select_payment":
		err = w.SelectPayment(req.Value)
	case "confirm_funding":
		err = w.ConfirmFunding(req.Details)
	case "advance":
		err = w.Advance()
	case "back":
		before := w.Step()
		err = w.Back()
		exited = err == nil && before == StepCountry
	case "skip":
		err = w.SkipProcessing()
	case "complete":
		var t transfer.Transfer
		t, err = w.Complete(c.UserContext())
		if err == nil {
			created = &t
		}
	default:
		return fiber.NewError(http.StatusBadRequest, "unknown action")
	}

	snap := w.Snapshot()
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrClosed), errors.Is(err, apperr.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperr.ErrConflict):
			status = http.StatusConflict
		case !errors.Is(err, apperr.ErrValidation):
			status = http.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{
			"error":      apperr.Message(err),
			"session_id": id,
			"wizard":     snap,
		})
	}

	body := fiber.Map{"session_id": id, "wizard": snap}
	if created != nil {
		body["transfer"] = created
	}
	if exited {
		body["exited"] = true
	}
	return c.Status(http.StatusOK).JSON(body)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, apperr.Message(err))
	case errors.Is(err, apperr.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, apperr.Message(err))
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
