package services

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

type AdjustmentService interface {
	List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.StockAdjustment], error)
	Rows(ctx context.Context, tenantID uuid.UUID) ([]models.StockAdjustment, error)
	Schema() listing.Schema
}

type adjustmentService struct {
	adjustmentRepo repositories.AdjustmentRepository
	collections    *Collections
	schema         listing.Schema
	now            func() time.Time
}

func NewAdjustmentService(adjustmentRepo repositories.AdjustmentRepository, collections *Collections, schema listing.Schema) AdjustmentService {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		collections:    collections,
		schema:         schema,
		now:            time.Now,
	}
}

func (s *adjustmentService) Schema() listing.Schema {
	return s.schema
}

func (s *adjustmentService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.StockAdjustment, error) {
	rows, err := loadCollection(ctx, s.collections, tenantID, caching.KeyAdjustments, func(ctx context.Context) ([]models.StockAdjustment, error) {
		return s.adjustmentRepo.ListAll(ctx, tenantID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustments: %w", err)
	}
	return rows, nil
}

func (s *adjustmentService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.StockAdjustment], error) {
	rows, err := s.Rows(ctx, tenantID)
	if err != nil {
		return listing.Page[models.StockAdjustment]{}, err
	}
	return listing.Run(rows, st, s.schema, s.now()), nil
}
