package handler

import (
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/middleware"
	"minecraft-store/internal/model"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService   service.CartService
	basketService service.BasketService
}

func NewCartHandler(cartService service.CartService, basketService service.BasketService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		basketService: basketService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cartResponse(c))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	err := h.cartService.AddItem(ctx, middleware.SessionID(c), model.CartItem{
		ID:    req.ID,
		Name:  req.Name,
		Price: req.Price,
		Image: req.Image,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, h.cartResponse(c))
}

// RemoveItem also pulls the package out of the session's open basket, if there is one.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.basketService.RemovePackage(ctx, middleware.SessionID(c), c.Param("id")); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, h.cartResponse(c))
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.Clear(ctx, middleware.SessionID(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c))
}

func (h *CartHandler) SetOpen(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetCartOpenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.SetOpen(ctx, middleware.SessionID(c), req.Open); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.cartResponse(c))
}

func (h *CartHandler) cartResponse(c echo.Context) *dto.CartResponse {
	ctx := c.Request().Context()
	sessionID := middleware.SessionID(c)

	items := h.cartService.Items(ctx, sessionID)
	return &dto.CartResponse{
		Items: items,
		Total: service.TotalOf(items),
		Count: len(items),
		Open:  h.cartService.IsOpen(ctx, sessionID),
	}
}
