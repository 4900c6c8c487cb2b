package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/classify"
	"stockroom/internal/events"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

// AdjustmentRequest is the body of a stock adjustment
type AdjustmentRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

const maxAdjustmentQuantity = 1000000

type StockLevelService interface {
	List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.StockLevelRow], error)
	Rows(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevelRow, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*models.BulkOperationResult, error)
	Adjust(ctx context.Context, tenantID, id uuid.UUID, req AdjustmentRequest) (*models.StockAdjustment, error)
	Schema() listing.Schema
}

type stockLevelService struct {
	stockRepo      repositories.StockLevelRepository
	adjustmentRepo repositories.AdjustmentRepository
	collections    *Collections
	thresholds     classify.Thresholds
	schema         listing.Schema
	now            func() time.Time
}

func NewStockLevelService(stockRepo repositories.StockLevelRepository, adjustmentRepo repositories.AdjustmentRepository, collections *Collections, thresholds classify.Thresholds, schema listing.Schema) StockLevelService {
	return &stockLevelService{
		stockRepo:      stockRepo,
		adjustmentRepo: adjustmentRepo,
		collections:    collections,
		thresholds:     thresholds,
		schema:         schema,
		now:            time.Now,
	}
}

func (s *stockLevelService) Schema() listing.Schema {
	return s.schema
}

// Rows returns every stock level of the tenant with its badges derived
func (s *stockLevelService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevelRow, error) {
	levels, err := loadCollection(ctx, s.collections, tenantID, caching.KeyStockLevels, func(ctx context.Context) ([]models.StockLevel, error) {
		return s.stockRepo.ListAll(ctx, tenantID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stock levels: %w", err)
	}
	rows := make([]models.StockLevelRow, len(levels))
	for i, level := range levels {
		rows[i] = models.NewStockLevelRow(level, s.thresholds)
	}
	return rows, nil
}

func (s *stockLevelService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.StockLevelRow], error) {
	rows, err := s.Rows(ctx, tenantID)
	if err != nil {
		return listing.Page[models.StockLevelRow]{}, err
	}
	return listing.Run(rows, st, s.schema, s.now()), nil
}

func (s *stockLevelService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error) {
	return s.stockRepo.GetByID(ctx, tenantID, id)
}

func (s *stockLevelService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.stockRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.collections.Changed(ctx, tenantID, events.ActionDeleted, ViewStockLevels, ViewWarehouseInventory, ViewAdjustments, ViewAlerts)
	return nil
}

func (s *stockLevelService) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*models.BulkOperationResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids cannot be empty", ErrValidation)
	}
	result := models.NewBulkOperationResult("bulk_delete_stock_levels", len(ids))

	deleted, err := s.stockRepo.BulkDelete(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete stock levels: %w", err)
	}
	recordBulkDelete(result, ids, deleted)

	if result.ProcessedItems > 0 {
		s.collections.Changed(ctx, tenantID, events.ActionDeleted, ViewStockLevels, ViewWarehouseInventory, ViewAdjustments, ViewAlerts)
	}
	return result, nil
}

func (s *stockLevelService) Adjust(ctx context.Context, tenantID, id uuid.UUID, req AdjustmentRequest) (*models.StockAdjustment, error) {
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.Reason = strings.TrimSpace(req.Reason)
	if err := models.ValidateAdjustment(req.Type, req.Quantity); err != nil {
		return nil, err
	}
	if req.Quantity > maxAdjustmentQuantity {
		return nil, fmt.Errorf("%w: quantity cannot exceed %d", ErrInvalidAdjustment, maxAdjustmentQuantity)
	}
	if len(req.Reason) > 500 {
		return nil, fmt.Errorf("%w: reason cannot exceed 500 characters", ErrValidation)
	}

	adj, err := s.adjustmentRepo.Apply(ctx, tenantID, id, req.Type, req.Quantity, req.Reason)
	if err != nil {
		return nil, err
	}
	s.collections.Changed(ctx, tenantID, events.ActionAdjusted, ViewStockLevels, ViewWarehouseInventory, ViewAdjustments)
	return adj, nil
}

// recordBulkDelete marks each requested id as processed or missing
func recordBulkDelete(result *models.BulkOperationResult, requested, deleted []uuid.UUID) {
	gone := make(map[uuid.UUID]bool, len(deleted))
	for _, id := range deleted {
		gone[id] = true
	}
	for i, id := range requested {
		if gone[id] {
			result.Succeed(i, id.String())
		} else {
			result.Fail(i, id.String(), ErrNotFound)
		}
	}
	result.Finish()
}
