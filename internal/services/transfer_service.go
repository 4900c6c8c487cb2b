package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/events"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

// TransferRequest is the body used to create a transfer
type TransferRequest struct {
	ProductID              uuid.UUID  `json:"product_id"`
	SourceWarehouseID      uuid.UUID  `json:"source_warehouse_id"`
	DestinationWarehouseID uuid.UUID  `json:"destination_warehouse_id"`
	Quantity               int        `json:"quantity"`
	Notes                  *string    `json:"notes,omitempty"`
	EstimatedArrival       *time.Time `json:"estimated_arrival,omitempty"`
}

type TransferService interface {
	List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.Transfer], error)
	Rows(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error)
	Create(ctx context.Context, tenantID uuid.UUID, req TransferRequest) (*models.Transfer, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Transfer, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Schema() listing.Schema
}

type transferService struct {
	transferRepo repositories.TransferRepository
	collections  *Collections
	schema       listing.Schema
	now          func() time.Time
}

func NewTransferService(transferRepo repositories.TransferRepository, collections *Collections, schema listing.Schema) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		collections:  collections,
		schema:       schema,
		now:          time.Now,
	}
}

func (s *transferService) Schema() listing.Schema {
	return s.schema
}

func (s *transferService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error) {
	rows, err := loadCollection(ctx, s.collections, tenantID, caching.KeyTransfers, func(ctx context.Context) ([]models.Transfer, error) {
		return s.transferRepo.ListAll(ctx, tenantID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transfers: %w", err)
	}
	return rows, nil
}

func (s *transferService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.Transfer], error) {
	rows, err := s.Rows(ctx, tenantID)
	if err != nil {
		return listing.Page[models.Transfer]{}, err
	}
	return listing.Run(rows, st, s.schema, s.now()), nil
}

func (s *transferService) Create(ctx context.Context, tenantID uuid.UUID, req TransferRequest) (*models.Transfer, error) {
	switch {
	case req.ProductID == uuid.Nil:
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	case req.SourceWarehouseID == uuid.Nil || req.DestinationWarehouseID == uuid.Nil:
		return nil, fmt.Errorf("%w: source and destination warehouses are required", ErrValidation)
	case req.SourceWarehouseID == req.DestinationWarehouseID:
		return nil, fmt.Errorf("%w: source and destination must differ", ErrValidation)
	case req.Quantity <= 0:
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	now := s.now().UTC()
	id := uuid.New()
	transfer := &models.Transfer{
		ID:                     id,
		TenantID:               tenantID,
		Reference:              TransferReference(id, now),
		ProductID:              req.ProductID,
		SourceWarehouseID:      req.SourceWarehouseID,
		DestinationWarehouseID: req.DestinationWarehouseID,
		Quantity:               req.Quantity,
		Status:                 models.TransferPending,
		Notes:                  trimmedOrNil(req.Notes),
		CreatedAt:              now,
		EstimatedArrival:       req.EstimatedArrival,
	}
	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	s.collections.Changed(ctx, tenantID, events.ActionCreated, ViewTransfers)
	return transfer, nil
}

// Transition moves a transfer to status. Completing a transfer moves its
// stock into the destination warehouse.
func (s *transferService) Transition(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Transfer, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	transfer, err := s.transferRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(transfer.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, transfer.Status, status)
	}

	if status == models.TransferCompleted {
		err = s.transferRepo.Complete(ctx, tenantID, id)
	} else {
		err = s.transferRepo.UpdateStatus(ctx, tenantID, id, transfer.Status, status)
	}
	if errors.Is(err, repositories.ErrStatusConflict) {
		return nil, fmt.Errorf("%w: transfer changed concurrently", ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}

	if status == models.TransferCompleted {
		s.collections.Changed(ctx, tenantID, events.ActionUpdated, ViewTransfers, ViewStockLevels, ViewWarehouseInventory)
		now := s.now().UTC()
		transfer.CompletedAt = &now
	} else {
		s.collections.Changed(ctx, tenantID, events.ActionUpdated, ViewTransfers)
	}
	transfer.Status = status
	return transfer, nil
}

// Delete removes a transfer that is not in transit
func (s *transferService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	transfer, err := s.transferRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if transfer.Status == models.TransferInTransit {
		return fmt.Errorf("%w: transfer is in transit", ErrInvalidTransition)
	}
	if err := s.transferRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.collections.Changed(ctx, tenantID, events.ActionDeleted, ViewTransfers)
	return nil
}

// TransferReference builds the tracking identifier shown to users, e.g. TRF-240301-1A2B3C
func TransferReference(id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("TRF-%s-%s", at.Format("060102"), strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6]))
}
