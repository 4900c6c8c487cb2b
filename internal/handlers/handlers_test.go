package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockroom/internal/classify"
	"stockroom/internal/common"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockStockLevelService struct {
	mock.Mock
	schema listing.Schema
}

func (m *MockStockLevelService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.StockLevelRow], error) {
	args := m.Called(ctx, tenantID, st)
	return args.Get(0).(listing.Page[models.StockLevelRow]), args.Error(1)
}

func (m *MockStockLevelService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevelRow, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.StockLevelRow), args.Error(1)
}

func (m *MockStockLevelService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLevel), args.Error(1)
}

func (m *MockStockLevelService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockStockLevelService) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*models.BulkOperationResult, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkOperationResult), args.Error(1)
}

func (m *MockStockLevelService) Adjust(ctx context.Context, tenantID, id uuid.UUID, req services.AdjustmentRequest) (*models.StockAdjustment, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockAdjustment), args.Error(1)
}

func (m *MockStockLevelService) Schema() listing.Schema {
	return m.schema
}

type MockTransferService struct {
	mock.Mock
	schema listing.Schema
}

func (m *MockTransferService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.Transfer], error) {
	args := m.Called(ctx, tenantID, st)
	return args.Get(0).(listing.Page[models.Transfer]), args.Error(1)
}

func (m *MockTransferService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.Transfer), args.Error(1)
}

func (m *MockTransferService) Create(ctx context.Context, tenantID uuid.UUID, req services.TransferRequest) (*models.Transfer, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferService) Transition(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Transfer, error) {
	args := m.Called(ctx, tenantID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTransferService) Schema() listing.Schema {
	return m.schema
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, tenantID uuid.UUID, req services.ExportRequest) (*models.ExportResult, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExportResult), args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	tenantID  uuid.UUID
	views     services.Views
	stock     *MockStockLevelService
	transfers *MockTransferService
	exports   *MockExportService
	e         *echo.Echo
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.tenantID = uuid.New()
	suite.views = services.NewViews(listing.DefaultPageSizes, 10)
	suite.stock = &MockStockLevelService{schema: suite.views.StockLevels}
	suite.transfers = &MockTransferService{schema: suite.views.Transfers}
	suite.exports = new(MockExportService)

	e := echo.New()
	api := e.Group("/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-No-Tenant") == "" {
				ctx := common.WithIdentity(c.Request().Context(), uuid.New(), suite.tenantID)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	})

	stock := NewStockLevelHandlers(suite.stock)
	api.GET("/stock-levels", stock.ListStockLevels)
	api.DELETE("/stock-levels/:id", stock.DeleteStockLevel)
	api.POST("/stock-levels/bulk-delete", stock.BulkDeleteStockLevels)
	api.POST("/stock-levels/:id/adjustments", stock.AdjustStock)
	api.GET("/stock-levels/:id/barcode", stock.GetBarcode)
	api.POST("/stock-levels/labels", stock.PrintLabels)

	transfers := NewTransferHandlers(suite.transfers)
	api.POST("/transfers", transfers.CreateTransfer)
	api.PUT("/transfers/:id/status", transfers.UpdateTransferStatus)
	api.DELETE("/transfers/:id", transfers.DeleteTransfer)

	api.POST("/exports/:view", NewExportHandlers(suite.exports).CreateExport)
	suite.e = e
}

func (suite *HandlersTestSuite) TearDownTest() {
	suite.stock.AssertExpectations(suite.T())
	suite.transfers.AssertExpectations(suite.T())
	suite.exports.AssertExpectations(suite.T())
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func stockRows(names ...string) []models.StockLevelRow {
	rows := make([]models.StockLevelRow, len(names))
	for i, name := range names {
		rows[i] = models.NewStockLevelRow(models.StockLevel{ID: uuid.New(), ProductName: name, SKU: name, Quantity: 3, ReorderPoint: 10}, classify.DefaultThresholds())
	}
	return rows
}

func (suite *HandlersTestSuite) TestListStockLevels_CanonicalQuery() {
	suite.stock.On("List", mock.Anything, suite.tenantID, mock.MatchedBy(func(st listing.State) bool {
		return st.Criteria.Value("status") == "low-stock" && st.Sort.Field == models.AttrName
	})).Return(listing.Page[models.StockLevelRow]{
		Rows: stockRows("Bolt", "Widget"), PageIndex: 0, PageSize: 10, PageCount: 1, Total: 2,
	}, nil).Once()

	rec := suite.do(http.MethodGet, "/v1/stock-levels?sort=name-asc&page=1&status=low-stock&level=bogus", nil)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var resp ListResponse[models.StockLevelRow]
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(suite.T(), resp.Rows, 2)
	assert.Equal(suite.T(), 1, resp.Page)
	assert.Equal(suite.T(), "status=low-stock", resp.Query)
	assert.False(suite.T(), resp.Canonical)
	assert.Equal(suite.T(), classify.LowStock, resp.Rows[0].Status)
}

func (suite *HandlersTestSuite) TestListStockLevels_ClampedPage() {
	suite.stock.On("List", mock.Anything, suite.tenantID, mock.Anything).Return(listing.Page[models.StockLevelRow]{
		Rows: stockRows("Widget"), PageIndex: 1, PageSize: 10, PageCount: 2, Total: 11, HasPrevious: true,
	}, nil).Once()

	rec := suite.do(http.MethodGet, "/v1/stock-levels?page=9&search=wid", nil)

	var resp ListResponse[models.StockLevelRow]
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), 2, resp.Page)
	assert.Equal(suite.T(), "page=2&search=wid", resp.Query)
	assert.False(suite.T(), resp.Canonical)
	assert.True(suite.T(), resp.HasPrevious)
}

func (suite *HandlersTestSuite) TestListStockLevels_AlreadyCanonical() {
	suite.stock.On("List", mock.Anything, suite.tenantID, mock.Anything).Return(listing.Page[models.StockLevelRow]{
		Rows: stockRows(), PageSize: 20,
	}, nil).Once()

	rec := suite.do(http.MethodGet, "/v1/stock-levels?pageSize=20&category=Parts", nil)

	var resp ListResponse[models.StockLevelRow]
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "category=Parts&pageSize=20", resp.Query)
	assert.True(suite.T(), resp.Canonical)
	assert.Empty(suite.T(), resp.Rows)
}

func (suite *HandlersTestSuite) TestListStockLevels_ServiceError() {
	suite.stock.On("List", mock.Anything, suite.tenantID, mock.Anything).
		Return(listing.Page[models.StockLevelRow]{}, errors.New("db down")).Once()

	rec := suite.do(http.MethodGet, "/v1/stock-levels", nil)
	assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)
}

func (suite *HandlersTestSuite) TestMissingTenant() {
	req := httptest.NewRequest(http.MethodGet, "/v1/stock-levels", nil)
	req.Header.Set("X-No-Tenant", "1")
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *HandlersTestSuite) TestDeleteStockLevel() {
	id := uuid.New()
	suite.stock.On("Delete", mock.Anything, suite.tenantID, id).Return(nil).Once()
	rec := suite.do(http.MethodDelete, "/v1/stock-levels/"+id.String(), nil)
	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)

	missing := uuid.New()
	suite.stock.On("Delete", mock.Anything, suite.tenantID, missing).Return(services.ErrNotFound).Once()
	rec = suite.do(http.MethodDelete, "/v1/stock-levels/"+missing.String(), nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)

	rec = suite.do(http.MethodDelete, "/v1/stock-levels/not-a-uuid", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestBulkDeleteStockLevels() {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	result := models.NewBulkOperationResult("bulk_delete_stock_levels", 2)
	result.Succeed(0, ids[0].String())
	result.Succeed(1, ids[1].String())
	result.Finish()
	suite.stock.On("BulkDelete", mock.Anything, suite.tenantID, ids).Return(result, nil).Once()

	rec := suite.do(http.MethodPost, "/v1/stock-levels/bulk-delete", map[string]interface{}{"ids": ids})

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"status":"completed"`)
}

func (suite *HandlersTestSuite) TestAdjustStock() {
	id := uuid.New()
	req := services.AdjustmentRequest{Type: "remove", Quantity: 4, Reason: "damaged"}
	suite.stock.On("Adjust", mock.Anything, suite.tenantID, id, req).
		Return(&models.StockAdjustment{ID: uuid.New(), StockLevelID: id, Type: "remove", Quantity: 4, QuantityBefore: 10, QuantityAfter: 6}, nil).Once()

	rec := suite.do(http.MethodPost, "/v1/stock-levels/"+id.String()+"/adjustments", req)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"quantity_after":6`)
}

func (suite *HandlersTestSuite) TestAdjustStock_Invalid() {
	id := uuid.New()
	req := services.AdjustmentRequest{Type: "add", Quantity: 0}
	suite.stock.On("Adjust", mock.Anything, suite.tenantID, id, req).
		Return(nil, services.ErrInvalidAdjustment).Once()

	rec := suite.do(http.MethodPost, "/v1/stock-levels/"+id.String()+"/adjustments", req)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "CLIENT_ERROR")
}

func (suite *HandlersTestSuite) TestGetBarcode() {
	id := uuid.New()
	suite.stock.On("GetByID", mock.Anything, suite.tenantID, id).Return(&models.StockLevel{ID: id, SKU: "WID-001"}, nil).Once()

	rec := suite.do(http.MethodGet, "/v1/stock-levels/"+id.String()+"/barcode?width=400&height=120", nil)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(suite.T(), bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func (suite *HandlersTestSuite) TestPrintLabels() {
	id := uuid.New()
	suite.stock.On("GetByID", mock.Anything, suite.tenantID, id).
		Return(&models.StockLevel{ID: id, ProductName: "Widget", SKU: "WID-001", LocationCode: "wh1-a-01", WarehouseName: "Main"}, nil).Once()

	rec := suite.do(http.MethodPost, "/v1/stock-levels/labels", map[string]interface{}{"ids": []uuid.UUID{id}})

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.True(suite.T(), strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func (suite *HandlersTestSuite) TestUpdateTransferStatus() {
	id := uuid.New()
	suite.transfers.On("Transition", mock.Anything, suite.tenantID, id, "completed").
		Return(&models.Transfer{ID: id, Status: models.TransferCompleted}, nil).Once()
	rec := suite.do(http.MethodPut, "/v1/transfers/"+id.String()+"/status", UpdateTransferStatusRequest{Status: "completed"})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	conflict := uuid.New()
	suite.transfers.On("Transition", mock.Anything, suite.tenantID, conflict, "pending").
		Return(nil, services.ErrInvalidTransition).Once()
	rec = suite.do(http.MethodPut, "/v1/transfers/"+conflict.String()+"/status", UpdateTransferStatusRequest{Status: "pending"})
	assert.Equal(suite.T(), http.StatusConflict, rec.Code)

	short := uuid.New()
	suite.transfers.On("Transition", mock.Anything, suite.tenantID, short, "completed").
		Return(nil, services.ErrInsufficientStock).Once()
	rec = suite.do(http.MethodPut, "/v1/transfers/"+short.String()+"/status", UpdateTransferStatusRequest{Status: "completed"})
	assert.Equal(suite.T(), http.StatusConflict, rec.Code)
}

func (suite *HandlersTestSuite) TestCreateTransfer_Validation() {
	req := services.TransferRequest{ProductID: uuid.New(), Quantity: 0}
	suite.transfers.On("Create", mock.Anything, suite.tenantID, mock.Anything).
		Return(nil, services.ErrValidation).Once()

	rec := suite.do(http.MethodPost, "/v1/transfers", req)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestCreateExport() {
	warehouseID := uuid.New()
	suite.exports.On("Export", mock.Anything, suite.tenantID, mock.MatchedBy(func(r services.ExportRequest) bool {
		return r.View == services.ViewWarehouseInventory && r.Format == "pdf" && r.WarehouseID == warehouseID &&
			r.Query.Get("zone") == "a"
	})).Return(&models.ExportResult{View: services.ViewWarehouseInventory, Format: "pdf", Rows: 3,
		DownloadURL: "https://minio/x.pdf", ExpiresAt: time.Now().Add(time.Minute)}, nil).Once()

	rec := suite.do(http.MethodPost, "/v1/exports/warehouse-inventory?format=pdf&zone=a&warehouse_id="+warehouseID.String(), nil)

	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "https://minio/x.pdf")
}

func (suite *HandlersTestSuite) TestCreateExport_Errors() {
	rec := suite.do(http.MethodPost, "/v1/exports/stock-levels?warehouse_id=nope", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	suite.exports.On("Export", mock.Anything, suite.tenantID, mock.Anything).Return(nil, services.ErrUnknownView).Once()
	rec = suite.do(http.MethodPost, "/v1/exports/orders", nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func TestHealthHandlers(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("unreachable") }

	tests := []struct {
		name       string
		checks     []DependencyCheck
		healthCode int
		readyCode  int
	}{
		{"all healthy", []DependencyCheck{{"database", true, healthy}, {"redis", false, healthy}}, http.StatusOK, http.StatusOK},
		{"optional down", []DependencyCheck{{"database", true, healthy}, {"nats", false, failing}}, http.StatusPartialContent, http.StatusOK},
		{"critical down", []DependencyCheck{{"database", true, failing}}, http.StatusPartialContent, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(tt.checks, func() map[string]interface{} { return map[string]interface{}{"total_jobs": 1} })
			e := echo.New()

			rec := httptest.NewRecorder()
			require.NoError(t, h.HealthCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
			assert.Equal(t, tt.healthCode, rec.Code)
			assert.Contains(t, rec.Body.String(), `"total_jobs":1`)

			rec = httptest.NewRecorder()
			require.NoError(t, h.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)))
			assert.Equal(t, tt.readyCode, rec.Code)
		})
	}
}
