package handler

import (
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type BlogHandler struct {
	blogService service.BlogService
}

func NewBlogHandler(blogService service.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

func (h *BlogHandler) ListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	posts, err := h.blogService.ListPosts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.PostsResponse{Posts: posts})
}

func (h *BlogHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.blogService.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, post)
}
