package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"stockroom/internal/labels"
	"stockroom/internal/models"
	"stockroom/internal/services"

	"github.com/labstack/echo/v4"
)

// StockLevelHandlers handles stock level HTTP requests
type StockLevelHandlers struct {
	stockService services.StockLevelService
}

// NewStockLevelHandlers creates a new stock level handlers instance
func NewStockLevelHandlers(stockService services.StockLevelService) *StockLevelHandlers {
	return &StockLevelHandlers{stockService: stockService}
}

// ListStockLevels handles GET /v1/stock-levels
func (h *StockLevelHandlers) ListStockLevels(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	schema := h.stockService.Schema()
	st := listState(c, schema)
	page, err := h.stockService.List(c.Request().Context(), tenant, st)
	if err != nil {
		return serviceError(c, err, "Stock levels", "list stock levels")
	}
	return sendPage(c, page, st, schema)
}

// DeleteStockLevel handles DELETE /v1/stock-levels/:id
func (h *StockLevelHandlers) DeleteStockLevel(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "stock level ID")
	if err != nil {
		return err
	}

	if err := h.stockService.Delete(c.Request().Context(), tenant, id); err != nil {
		return serviceError(c, err, "Stock level", "delete stock level")
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteStockLevels handles POST /v1/stock-levels/bulk-delete
func (h *StockLevelHandlers) BulkDeleteStockLevels(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req models.BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.stockService.BulkDelete(c.Request().Context(), tenant, req.IDs)
	if err != nil {
		return serviceError(c, err, "Stock levels", "delete stock levels")
	}
	return c.JSON(http.StatusOK, result)
}

// AdjustStock handles POST /v1/stock-levels/:id/adjustments
func (h *StockLevelHandlers) AdjustStock(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "stock level ID")
	if err != nil {
		return err
	}

	var req services.AdjustmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	adj, err := h.stockService.Adjust(c.Request().Context(), tenant, id, req)
	if err != nil {
		return serviceError(c, err, "Stock level", "adjust stock")
	}
	return c.JSON(http.StatusCreated, adj)
}

// GetBarcode handles GET /v1/stock-levels/:id/barcode?width=&height=
func (h *StockLevelHandlers) GetBarcode(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "stock level ID")
	if err != nil {
		return err
	}

	width, _ := strconv.Atoi(c.QueryParam("width"))
	height, _ := strconv.Atoi(c.QueryParam("height"))

	level, err := h.stockService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return serviceError(c, err, "Stock level", "load stock level")
	}
	png, err := labels.BarcodePNG(level.SKU, width, height)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("Cannot render barcode: %v", err))
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// PrintLabels handles POST /v1/stock-levels/labels and returns one PDF
// label per requested stock level
func (h *StockLevelHandlers) PrintLabels(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req models.BulkDeleteRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids are required")
	}
	if len(req.IDs) > 500 {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot print more than 500 labels at once")
	}

	ctx := c.Request().Context()
	items := make([]labels.Label, 0, len(req.IDs))
	for _, id := range req.IDs {
		level, err := h.stockService.GetByID(ctx, tenant, id)
		if err != nil {
			return serviceError(c, err, "Stock level "+id.String(), "load stock level")
		}
		items = append(items, labels.Label{
			ProductName:  level.ProductName,
			SKU:          level.SKU,
			LocationCode: level.LocationCode,
			Warehouse:    level.WarehouseName,
		})
	}

	pdf, err := labels.LabelPDF(items)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("Cannot render labels: %v", err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="labels.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// AdjustmentHandlers handles the adjustment history view
type AdjustmentHandlers struct {
	adjustmentService services.AdjustmentService
}

func NewAdjustmentHandlers(adjustmentService services.AdjustmentService) *AdjustmentHandlers {
	return &AdjustmentHandlers{adjustmentService: adjustmentService}
}

// ListAdjustments handles GET /v1/adjustments
func (h *AdjustmentHandlers) ListAdjustments(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	schema := h.adjustmentService.Schema()
	st := listState(c, schema)
	page, err := h.adjustmentService.List(c.Request().Context(), tenant, st)
	if err != nil {
		return serviceError(c, err, "Adjustments", "list adjustments")
	}
	return sendPage(c, page, st, schema)
}
