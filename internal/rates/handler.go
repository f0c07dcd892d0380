package rates

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes rate and country lookups.
type Handler struct {
	service *Service
}

// NewHandler constructs a rates handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Rate quotes ?from=&to=&country=. from defaults to USD and to defaults to
// the country's currency.
func (h *Handler) Rate(c *fiber.Ctx) error {
	country := c.Query("country")
	from := c.Query("from", BaseCurrency)
	to := c.Query("to")
	if to == "" {
		to = CurrencyFor(country)
	}
	quote, err := h.service.GetRate(c.UserContext(), from, to, country)
	if err != nil {
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	}
	return c.Status(http.StatusOK).JSON(quote)
}

// Countries lists destinations filtered by ?q=.
func (h *Handler) Countries(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"countries": SearchCountries(c.Query("q"))})
}
