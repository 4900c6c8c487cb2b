package handlers

import (
	"net/http"

	"stockroom/internal/common"
	"stockroom/internal/services"

	"github.com/labstack/echo/v4"
)

// ExportHandlers renders list views to files in object storage
type ExportHandlers struct {
	exportService services.ExportService
}

func NewExportHandlers(exportService services.ExportService) *ExportHandlers {
	return &ExportHandlers{exportService: exportService}
}

// CreateExport handles POST /v1/exports/:view. The query string carries the
// view's list parameters plus format and, for warehouse inventory, warehouse_id.
func (h *ExportHandlers) CreateExport(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	query := c.QueryParams()
	req := services.ExportRequest{
		View:   c.Param("view"),
		Format: query.Get("format"),
		Query:  query,
	}
	if raw := query.Get("warehouse_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "warehouse_id")
		if err != nil {
			return common.SendValidationError(c, "warehouse_id", err.Error())
		}
		req.WarehouseID = id
	}

	result, err := h.exportService.Export(c.Request().Context(), tenant, req)
	if err != nil {
		return serviceError(c, err, "Export", "export "+req.View)
	}
	return c.JSON(http.StatusCreated, result)
}
