package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/archeryapi/models"
)

type createItemRequest struct {
	Category   string         `json:"category"`
	Name       string         `json:"name"`
	Quantity   int            `json:"quantity"`
	Unit       string         `json:"unit"`
	FaceSizeCM *int           `json:"faceSizeCm"`
	Attributes map[string]any `json:"attributes"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// Inventory returns stock lines with their category, optionally filtered by category name.
func (h *Handler) Inventory(c echo.Context) error {
	var items []models.InventoryItem
	q := h.db.NewSelect().Model(&items).Relation("Category").OrderExpr("category.name ASC, ii.name ASC")
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		q = q.Where("LOWER(category.name) = LOWER(?)", cat)
	}

	if err := q.Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []models.InventoryItem{}
	}

	return c.JSON(http.StatusOK, items)
}

// CreateInventoryItem adds a stock line, creating its category when it is new.
func (h *Handler) CreateInventoryItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.Category = strings.TrimSpace(req.Category)
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)

	if req.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}
	if req.FaceSizeCM != nil && *req.FaceSizeCM <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "faceSizeCm must be positive")
	}
	if req.Unit == "" {
		req.Unit = "piece"
	}

	ctx := c.Request().Context()
	cat := &models.InventoryCategory{Name: req.Category}
	_, err := h.db.NewInsert().Model(cat).
		On("CONFLICT (name) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item := &models.InventoryItem{
		CategoryID: cat.ID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		FaceSizeCM: req.FaceSizeCM,
		Attributes: req.Attributes,
		Category:   cat,
	}
	if _, err := h.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, item)
}

// UpdateQuantity sets the stock count of an item.
func (h *Handler) UpdateQuantity(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be zero or more")
	}

	res, err := h.db.NewUpdate().Model((*models.InventoryItem)(nil)).
		Set("quantity = ?", *req.Quantity).
		Where("id = ?", id).
		Exec(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	return c.NoContent(http.StatusNoContent)
}
