package handler

import (
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type PackageHandler struct {
	packageService service.PackageService
}

func NewPackageHandler(packageService service.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

func (h *PackageHandler) ListPackages(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.packageService.ListPackages(ctx)
	if err != nil {
		return err
	}

	views := make([]dto.PackageView, len(res.Data))
	for i, p := range res.Data {
		views[i] = dto.PackageView{Package: p, DisplayPrice: p.DisplayPrice()}
	}

	return c.JSON(http.StatusOK, &dto.PackagesResponse{
		Packages: views,
		Source:   res.Source.String(),
	})
}
