package services

import (
	"context"
	"io"
	"time"

	"stockroom/internal/events"
	"stockroom/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStockLevelRepository struct {
	mock.Mock
}

func (m *MockStockLevelRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevel, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLevel), args.Error(1)
}

func (m *MockStockLevelRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockStockLevelRepository) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockStockLevelRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) Apply(ctx context.Context, tenantID, stockLevelID uuid.UUID, adjType string, quantity int, reason string) (*models.StockAdjustment, error) {
	args := m.Called(ctx, tenantID, stockLevelID, adjType, quantity, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockAdjustment, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockAdjustment), args.Error(1)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockAlertRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertRepository) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAlertRepository) ListActiveByRule(ctx context.Context, tenantID, ruleID uuid.UUID) ([]models.Alert, error) {
	args := m.Called(ctx, tenantID, ruleID)
	return args.Get(0).([]models.Alert), args.Error(1)
}

type MockAlertRuleRepository struct {
	mock.Mock
}

func (m *MockAlertRuleRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.AlertRule), args.Error(1)
}

func (m *MockAlertRuleRepository) ListEnabled(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.AlertRule), args.Error(1)
}

func (m *MockAlertRuleRepository) Create(ctx context.Context, rule *models.AlertRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAlertRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transfer), args.Error(1)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transfer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to string) error {
	args := m.Called(ctx, tenantID, id, from, to)
	return args.Error(0)
}

func (m *MockTransferRepository) Complete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTransferRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockWarehouseInventoryRepository struct {
	mock.Mock
}

func (m *MockWarehouseInventoryRepository) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.WarehouseInventoryItem, error) {
	args := m.Called(ctx, tenantID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WarehouseInventoryItem), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCollection(ctx context.Context, tenantID uuid.UUID, key string, dest any) (bool, error) {
	args := m.Called(ctx, tenantID, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) CollectionGeneration(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	args := m.Called(ctx, tenantID, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) SetCollection(ctx context.Context, tenantID uuid.UUID, key string, generation int64, value any, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, key, generation, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCollections(ctx context.Context, tenantID uuid.UUID, keys ...string) error {
	args := m.Called(ctx, tenantID, keys)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// cacheMiss makes every collection read miss and every write succeed
func (m *MockCacheService) cacheMiss() {
	m.On("GetCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	m.On("CollectionGeneration", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	m.On("SetCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
	uploaded []byte
}

func (m *MockMinioService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.uploaded = data
	args := m.Called(ctx, bucketName, objectName, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) Delete(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}
