package services

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/classify"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

type WarehouseInventoryService interface {
	List(ctx context.Context, tenantID, warehouseID uuid.UUID, st listing.State) (listing.Page[models.WarehouseInventoryRow], error)
	Rows(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.WarehouseInventoryRow, error)
	Schema() listing.Schema
}

type warehouseInventoryService struct {
	inventoryRepo repositories.WarehouseInventoryRepository
	collections   *Collections
	thresholds    classify.Thresholds
	schema        listing.Schema
	now           func() time.Time
}

func NewWarehouseInventoryService(inventoryRepo repositories.WarehouseInventoryRepository, collections *Collections, thresholds classify.Thresholds, schema listing.Schema) WarehouseInventoryService {
	return &warehouseInventoryService{
		inventoryRepo: inventoryRepo,
		collections:   collections,
		thresholds:    thresholds,
		schema:        schema,
		now:           time.Now,
	}
}

func (s *warehouseInventoryService) Schema() listing.Schema {
	return s.schema
}

func (s *warehouseInventoryService) Rows(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.WarehouseInventoryRow, error) {
	items, err := loadCollection(ctx, s.collections, tenantID, caching.WarehouseInventoryKey(warehouseID), func(ctx context.Context) ([]models.WarehouseInventoryItem, error) {
		return s.inventoryRepo.ListByWarehouse(ctx, tenantID, warehouseID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory of warehouse %s: %w", warehouseID, err)
	}
	rows := make([]models.WarehouseInventoryRow, len(items))
	for i, item := range items {
		rows[i] = models.NewWarehouseInventoryRow(item, s.thresholds)
	}
	return rows, nil
}

func (s *warehouseInventoryService) List(ctx context.Context, tenantID, warehouseID uuid.UUID, st listing.State) (listing.Page[models.WarehouseInventoryRow], error) {
	rows, err := s.Rows(ctx, tenantID, warehouseID)
	if err != nil {
		return listing.Page[models.WarehouseInventoryRow]{}, err
	}
	return listing.Run(rows, st, s.schema, s.now()), nil
}
