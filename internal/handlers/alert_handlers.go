package handlers

import (
	"net/http"

	"stockroom/internal/models"
	"stockroom/internal/services"

	"github.com/labstack/echo/v4"
)

// AlertHandlers handles alerts and alert rules
type AlertHandlers struct {
	alertService services.AlertService
}

func NewAlertHandlers(alertService services.AlertService) *AlertHandlers {
	return &AlertHandlers{alertService: alertService}
}

// UpdateAlertStatusRequest is the body of PUT /v1/alerts/:id/status
type UpdateAlertStatusRequest struct {
	Status string `json:"status"`
}

// ListAlerts handles GET /v1/alerts
func (h *AlertHandlers) ListAlerts(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	schema := h.alertService.Schema()
	st := listState(c, schema)
	page, err := h.alertService.List(c.Request().Context(), tenant, st)
	if err != nil {
		return serviceError(c, err, "Alerts", "list alerts")
	}
	return sendPage(c, page, st, schema)
}

// UpdateAlertStatus handles PUT /v1/alerts/:id/status
func (h *AlertHandlers) UpdateAlertStatus(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "alert ID")
	if err != nil {
		return err
	}

	var req UpdateAlertStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.alertService.UpdateStatus(c.Request().Context(), tenant, id, req.Status); err != nil {
		return serviceError(c, err, "Alert", "update alert status")
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String(), "status": req.Status})
}

// DeleteAlert handles DELETE /v1/alerts/:id
func (h *AlertHandlers) DeleteAlert(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "alert ID")
	if err != nil {
		return err
	}

	if err := h.alertService.Delete(c.Request().Context(), tenant, id); err != nil {
		return serviceError(c, err, "Alert", "delete alert")
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteAlerts handles POST /v1/alerts/bulk-delete
func (h *AlertHandlers) BulkDeleteAlerts(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req models.BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.alertService.BulkDelete(c.Request().Context(), tenant, req.IDs)
	if err != nil {
		return serviceError(c, err, "Alerts", "delete alerts")
	}
	return c.JSON(http.StatusOK, result)
}

// ListAlertRules handles GET /v1/alert-rules
func (h *AlertHandlers) ListAlertRules(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	rules, err := h.alertService.ListRules(c.Request().Context(), tenant)
	if err != nil {
		return serviceError(c, err, "Alert rules", "list alert rules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules": rules,
		"total": len(rules),
	})
}

// CreateAlertRule handles POST /v1/alert-rules
func (h *AlertHandlers) CreateAlertRule(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req services.AlertRuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rule, err := h.alertService.CreateRule(c.Request().Context(), tenant, req)
	if err != nil {
		return serviceError(c, err, "Alert rule", "create alert rule")
	}
	return c.JSON(http.StatusCreated, rule)
}

// DeleteAlertRule handles DELETE /v1/alert-rules/:id
func (h *AlertHandlers) DeleteAlertRule(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "alert rule ID")
	if err != nil {
		return err
	}

	if err := h.alertService.DeleteRule(c.Request().Context(), tenant, id); err != nil {
		return serviceError(c, err, "Alert rule", "delete alert rule")
	}
	return c.NoContent(http.StatusNoContent)
}
