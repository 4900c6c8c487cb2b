package handlers

import (
	"stockroom/internal/services"

	"github.com/labstack/echo/v4"
)

// WarehouseHandlers handles per-warehouse views
type WarehouseHandlers struct {
	inventoryService services.WarehouseInventoryService
}

// NewWarehouseHandlers creates a new warehouse handlers instance
func NewWarehouseHandlers(inventoryService services.WarehouseInventoryService) *WarehouseHandlers {
	return &WarehouseHandlers{inventoryService: inventoryService}
}

// ListWarehouseInventory handles GET /v1/warehouses/:id/inventory
func (h *WarehouseHandlers) ListWarehouseInventory(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	warehouseID, err := pathID(c, "warehouse ID")
	if err != nil {
		return err
	}

	schema := h.inventoryService.Schema()
	st := listState(c, schema)
	page, err := h.inventoryService.List(c.Request().Context(), tenant, warehouseID, st)
	if err != nil {
		return serviceError(c, err, "Warehouse", "list warehouse inventory")
	}
	return sendPage(c, page, st, schema)
}
