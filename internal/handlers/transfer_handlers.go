package handlers

import (
	"net/http"

	"stockroom/internal/services"

	"github.com/labstack/echo/v4"
)

// TransferHandlers handles stock transfers between warehouses
type TransferHandlers struct {
	transferService services.TransferService
}

func NewTransferHandlers(transferService services.TransferService) *TransferHandlers {
	return &TransferHandlers{transferService: transferService}
}

// UpdateTransferStatusRequest is the body of PUT /v1/transfers/:id/status
type UpdateTransferStatusRequest struct {
	Status string `json:"status"`
}

// ListTransfers handles GET /v1/transfers
func (h *TransferHandlers) ListTransfers(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	schema := h.transferService.Schema()
	st := listState(c, schema)
	page, err := h.transferService.List(c.Request().Context(), tenant, st)
	if err != nil {
		return serviceError(c, err, "Transfers", "list transfers")
	}
	return sendPage(c, page, st, schema)
}

// CreateTransfer handles POST /v1/transfers
func (h *TransferHandlers) CreateTransfer(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req services.TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	transfer, err := h.transferService.Create(c.Request().Context(), tenant, req)
	if err != nil {
		return serviceError(c, err, "Transfer", "create transfer")
	}
	return c.JSON(http.StatusCreated, transfer)
}

// UpdateTransferStatus handles PUT /v1/transfers/:id/status
func (h *TransferHandlers) UpdateTransferStatus(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "transfer ID")
	if err != nil {
		return err
	}

	var req UpdateTransferStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	transfer, err := h.transferService.Transition(c.Request().Context(), tenant, id, req.Status)
	if err != nil {
		return serviceError(c, err, "Transfer", "update transfer status")
	}
	return c.JSON(http.StatusOK, transfer)
}

// DeleteTransfer handles DELETE /v1/transfers/:id
func (h *TransferHandlers) DeleteTransfer(c echo.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "transfer ID")
	if err != nil {
		return err
	}

	if err := h.transferService.Delete(c.Request().Context(), tenant, id); err != nil {
		return serviceError(c, err, "Transfer", "delete transfer")
	}
	return c.NoContent(http.StatusNoContent)
}
