package handler

import (
	"net/http"

	"minecraft-store/internal/client"
	"minecraft-store/internal/dto"
	"minecraft-store/internal/middleware"
	"minecraft-store/internal/model"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type BasketHandler struct {
	basketService service.BasketService
}

func NewBasketHandler(basketService service.BasketService) *BasketHandler {
	return &BasketHandler{
		basketService: basketService,
	}
}

func (h *BasketHandler) GetBasket(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.basketService.GetOrCreateBasket(ctx, middleware.SessionID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, basketResponse(res))
}

func (h *BasketHandler) Reset(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.basketService.ResetBasket(ctx, middleware.SessionID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, basketResponse(res))
}

func (h *BasketHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	res, err := h.basketService.ApplyCoupon(ctx, middleware.SessionID(c), req.Code)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, basketResponse(res))
}

func basketResponse(res client.Result[*model.Basket]) *dto.BasketResponse {
	return &dto.BasketResponse{
		Basket: res.Data,
		Source: res.Source.String(),
	}
}
