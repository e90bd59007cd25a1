package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/ports"
)

// ShopHandler serves merchant branding for branded tracking pages.
type ShopHandler struct {
	shops ports.ShopRepository
}

func NewShopHandler(shops ports.ShopRepository) *ShopHandler {
	return &ShopHandler{shops: shops}
}

// Get handles GET /shops/:slug.
//
// @Summary      Get the branding of a shop
// @Tags         shops
// @Produce      json
// @Param        slug  path      string  true  "Shop slug"
// @Success      200   {object}  shopResponse
// @Failure      404   {object}  errorResponse
// @Router       /shops/{slug} [get]
func (h *ShopHandler) Get(c echo.Context) error {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slug is required")
	}

	shop, err := h.shops.FindBySlug(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shopResponse{
		ID:           shop.ID,
		Slug:         shop.Slug,
		Name:         shop.Name,
		LogoURL:      shop.LogoURL,
		PrimaryColor: shop.PrimaryColor,
		Domain:       shop.Domain,
	})
}
