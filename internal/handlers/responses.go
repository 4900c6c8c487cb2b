package handlers

import (
	"errors"
	"log"
	"net/http"

	"stockroom/internal/common"
	"stockroom/internal/listing"
	"stockroom/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ListResponse is one page of a list view. Page is one-based. Query is the
// canonical query string for the state that produced the page, and Canonical
// reports whether the request already used it.
type ListResponse[T any] struct {
	Rows        []T    `json:"rows"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
	PageCount   int    `json:"page_count"`
	Total       int    `json:"total"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
	Query       string `json:"query"`
	Canonical   bool   `json:"canonical"`
}

// listState decodes the view state from the request query
func listState(c echo.Context, schema listing.Schema) listing.State {
	return listing.Decode(c.QueryParams(), schema)
}

// sendPage writes page with the canonical query of st. The page index is
// taken from page since pagination may have clamped it.
func sendPage[T any](c echo.Context, page listing.Page[T], st listing.State, schema listing.Schema) error {
	st.Pagination.PageIndex = page.PageIndex
	query, changed := listing.Sync(c.QueryString(), st, schema)
	return c.JSON(http.StatusOK, ListResponse[T]{
		Rows:        page.Rows,
		Page:        page.PageIndex + 1,
		PageSize:    page.PageSize,
		PageCount:   page.PageCount,
		Total:       page.Total,
		HasPrevious: page.HasPrevious,
		HasNext:     page.HasNext,
		Query:       query,
		Canonical:   !changed,
	})
}

// tenantID reads the tenant the JWT middleware stored in the request context
func tenantID(c echo.Context) (uuid.UUID, error) {
	id, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}
	return id, nil
}

// pathID parses the :id path parameter
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param("id"), name)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

// serviceError maps service errors onto HTTP responses
func serviceError(c echo.Context, err error, resource, action string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidAdjustment):
		return common.SendClientError(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInsufficientStock):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, services.ErrUnknownView):
		return common.SendNotFoundError(c, "View")
	}
	log.Printf("Failed to %s: %v", action, err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to "+action)
}
