package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"stockroom/internal/caching"
	"stockroom/internal/events"
	"stockroom/internal/listing"
	"stockroom/internal/models"
	"stockroom/internal/repositories"

	"github.com/google/uuid"
)

// AlertRuleRequest is the body used to create an alert rule
type AlertRuleRequest struct {
	Name         string  `json:"name"`
	Condition    string  `json:"condition"`
	Severity     string  `json:"severity"`
	Category     *string `json:"category,omitempty"`
	LocationCode *string `json:"location_code,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

type AlertService interface {
	List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.Alert], error)
	Rows(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*models.BulkOperationResult, error)

	ListRules(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error)
	CreateRule(ctx context.Context, tenantID uuid.UUID, req AlertRuleRequest) (*models.AlertRule, error)
	DeleteRule(ctx context.Context, tenantID, id uuid.UUID) error

	Schema() listing.Schema
}

type alertService struct {
	alertRepo   repositories.AlertRepository
	ruleRepo    repositories.AlertRuleRepository
	collections *Collections
	schema      listing.Schema
	now         func() time.Time
}

func NewAlertService(alertRepo repositories.AlertRepository, ruleRepo repositories.AlertRuleRepository, collections *Collections, schema listing.Schema) AlertService {
	return &alertService{
		alertRepo:   alertRepo,
		ruleRepo:    ruleRepo,
		collections: collections,
		schema:      schema,
		now:         time.Now,
	}
}

func (s *alertService) Schema() listing.Schema {
	return s.schema
}

func (s *alertService) Rows(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	rows, err := loadCollection(ctx, s.collections, tenantID, caching.KeyAlerts, func(ctx context.Context) ([]models.Alert, error) {
		return s.alertRepo.ListAll(ctx, tenantID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	return rows, nil
}

func (s *alertService) List(ctx context.Context, tenantID uuid.UUID, st listing.State) (listing.Page[models.Alert], error) {
	rows, err := s.Rows(ctx, tenantID)
	if err != nil {
		return listing.Page[models.Alert]{}, err
	}
	return listing.Run(rows, st, s.schema, s.now()), nil
}

func (s *alertService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(models.AlertStatuses, status) {
		return fmt.Errorf("%w: status must be one of %s", ErrValidation, strings.Join(models.AlertStatuses, ", "))
	}
	if err := s.alertRepo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return err
	}
	s.collections.Changed(ctx, tenantID, events.ActionUpdated, ViewAlerts)
	return nil
}

func (s *alertService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.alertRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.collections.Changed(ctx, tenantID, events.ActionDeleted, ViewAlerts)
	return nil
}

func (s *alertService) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*models.BulkOperationResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids cannot be empty", ErrValidation)
	}
	result := models.NewBulkOperationResult("bulk_delete_alerts", len(ids))

	deleted, err := s.alertRepo.BulkDelete(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete alerts: %w", err)
	}
	recordBulkDelete(result, ids, deleted)

	if result.ProcessedItems > 0 {
		s.collections.Changed(ctx, tenantID, events.ActionDeleted, ViewAlerts)
	}
	return result, nil
}

func (s *alertService) ListRules(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error) {
	return loadCollection(ctx, s.collections, tenantID, caching.KeyAlertRules, func(ctx context.Context) ([]models.AlertRule, error) {
		return s.ruleRepo.ListAll(ctx, tenantID)
	})
}

func (s *alertService) CreateRule(ctx context.Context, tenantID uuid.UUID, req AlertRuleRequest) (*models.AlertRule, error) {
	rule, err := newAlertRule(tenantID, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create alert rule: %w", err)
	}
	s.collections.Changed(ctx, tenantID, events.ActionCreated, caching.KeyAlertRules)
	return rule, nil
}

func (s *alertService) DeleteRule(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.ruleRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.collections.Changed(ctx, tenantID, events.ActionDeleted, caching.KeyAlertRules, ViewAlerts)
	return nil
}

func newAlertRule(tenantID uuid.UUID, req AlertRuleRequest, now time.Time) (*models.AlertRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("%w: name cannot exceed 100 characters", ErrValidation)
	}
	if !slices.Contains(models.RuleConditions, req.Condition) {
		return nil, fmt.Errorf("%w: condition must be one of %s", ErrValidation, strings.Join(models.RuleConditions, ", "))
	}
	if !slices.Contains(models.Severities, req.Severity) {
		return nil, fmt.Errorf("%w: severity must be one of %s", ErrValidation, strings.Join(models.Severities, ", "))
	}

	rule := &models.AlertRule{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Condition: req.Condition,
		Severity:  req.Severity,
		Category:  trimmedOrNil(req.Category),
		Enabled:   req.Enabled == nil || *req.Enabled,
		CreatedAt: now.UTC(),
	}
	if code := trimmedOrNil(req.LocationCode); code != nil {
		key := listing.NormalizeKey(*code)
		rule.LocationCode = &key
	}
	return rule, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
