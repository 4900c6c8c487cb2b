package repositories

import (
	"context"

	"stockroom/internal/models"

	"github.com/google/uuid"
)

type AlertRuleRepository interface {
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error)
	ListEnabled(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error)
	Create(ctx context.Context, rule *models.AlertRule) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type alertRuleRepo struct {
	db DBTX
}

func NewAlertRuleRepo(db DBTX) AlertRuleRepository {
	return &alertRuleRepo{db: db}
}

func (r *alertRuleRepo) list(ctx context.Context, query string, tenantID uuid.UUID) ([]models.AlertRule, error) {
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.AlertRule{}
	for rows.Next() {
		var rule models.AlertRule
		err := rows.Scan(&rule.ID, &rule.TenantID, &rule.Name, &rule.Condition, &rule.Severity,
			&rule.Category, &rule.LocationCode, &rule.Enabled, &rule.CreatedAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *alertRuleRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error) {
	query := `
		SELECT id, tenant_id, name, condition, severity, category, location_code, enabled, created_at
		FROM alert_rules
		WHERE tenant_id = $1
		ORDER BY name
	`
	return r.list(ctx, query, tenantID)
}

func (r *alertRuleRepo) ListEnabled(ctx context.Context, tenantID uuid.UUID) ([]models.AlertRule, error) {
	query := `
		SELECT id, tenant_id, name, condition, severity, category, location_code, enabled, created_at
		FROM alert_rules
		WHERE tenant_id = $1 AND enabled = TRUE
		ORDER BY name
	`
	return r.list(ctx, query, tenantID)
}

func (r *alertRuleRepo) Create(ctx context.Context, rule *models.AlertRule) error {
	query := `
		INSERT INTO alert_rules (id, tenant_id, name, condition, severity, category, location_code, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, rule.ID, rule.TenantID, rule.Name, rule.Condition, rule.Severity,
		rule.Category, rule.LocationCode, rule.Enabled, rule.CreatedAt)
	return err
}

// Delete removes the rule; its alerts go with it through ON DELETE CASCADE
func (r *alertRuleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM alert_rules WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
