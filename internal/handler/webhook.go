package handler

import (
	"io"
	"net/http"

	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func (h *WebhookHandler) TebexWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	result, err := h.webhookService.HandleWebhook(ctx, c.Request().Header, body)
	if err != nil {
		return toHTTPError(err)
	}

	if result.ID != "" {
		return c.JSON(http.StatusOK, map[string]string{"id": result.ID})
	}
	return c.NoContent(http.StatusOK)
}
