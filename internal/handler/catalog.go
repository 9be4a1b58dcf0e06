package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/model"
	"github.com/thestylist/booking-api/internal/repository"
)

// CatalogHandler serves the public browse endpoints: categories and the
// services under them. These routes sit behind the Redis response cache,
// so they must stay identity-free.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

func NewCatalogHandler(cat *repository.CatalogRepo) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

type categoryResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Slug        string  `json:"slug"`
}

type serviceResp struct {
	ID          uint64  `json:"id"`
	CategoryID  uint64  `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PriceCents  uint32  `json:"price_cents"`
	DurationMin uint32  `json:"duration_min"`
	Slug        string  `json:"slug"`
}

func toCategoryResp(c model.Category) categoryResp {
	return categoryResp{ID: c.ID, Name: c.Name, Description: c.Description, Slug: c.Slug}
}

func toServiceResp(s model.Service) serviceResp {
	return serviceResp{
		ID: s.ID, CategoryID: s.CategoryID, Name: s.Name,
		Description: s.Description, PriceCents: s.PriceCents,
		DurationMin: s.DurationMin, Slug: s.Slug,
	}
}

// ListCategories returns all service categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list categories failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryResp(cat))
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// GetCategory returns one category by slug together with its services.
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Catalog.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load category failed"})
	}
	services, err := h.Catalog.ListServices(ctx, cat.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list services failed"})
	}
	out := make([]serviceResp, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"category": toCategoryResp(cat),
		"services": out,
	})
}

// ListServices returns all services, optionally filtered with
// ?category_id=N.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	var categoryID uint64
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	services, err := h.Catalog.ListServices(ctx, categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list services failed"})
	}
	out := make([]serviceResp, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"services": out})
}
