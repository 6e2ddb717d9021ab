package handler

import (
	"net/http"
	"strings"
	"time"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/middleware"
	"minecraft-store/internal/model"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	basketService service.BasketService
}

func NewCheckoutHandler(basketService service.BasketService) *CheckoutHandler {
	return &CheckoutHandler{
		basketService: basketService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	edition, ok := parseEdition(req.Edition)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "edition must be java or bedrock")
	}

	result, err := h.basketService.CheckoutCart(ctx, middleware.SessionID(c), req.Username, edition, req.ReturnURL)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) State(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, h.basketService.State(ctx, middleware.SessionID(c)))
}

func (h *CheckoutHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.basketService.History(ctx, middleware.SessionID(c))
	if err != nil {
		return err
	}

	items := make([]dto.CheckoutHistoryItem, len(records))
	for i, r := range records {
		items[i] = dto.CheckoutHistoryItem{
			BasketIdent:   r.BasketIdent,
			Username:      r.Username,
			Edition:       r.Edition,
			Status:        string(r.Status),
			CheckoutURL:   r.CheckoutURL,
			FailedItems:   r.FailedItems,
			Error:         r.Error,
			TransactionID: r.TransactionID,
			CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, items)
}

// parseEdition defaults to java when the field is omitted.
func parseEdition(v string) (model.Edition, bool) {
	switch model.Edition(strings.ToLower(strings.TrimSpace(v))) {
	case "", model.EditionJava:
		return model.EditionJava, true
	case model.EditionBedrock:
		return model.EditionBedrock, true
	}
	return "", false
}
