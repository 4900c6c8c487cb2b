package repositories

import (
	"context"

	"stockroom/internal/models"

	"github.com/google/uuid"
)

type AlertRepository interface {
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error)
	Create(ctx context.Context, alert *models.Alert) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListActiveByRule(ctx context.Context, tenantID, ruleID uuid.UUID) ([]models.Alert, error)
}

type alertRepo struct {
	db DBTX
}

func NewAlertRepo(db DBTX) AlertRepository {
	return &alertRepo{db: db}
}

const alertSelect = `
		SELECT a.id, a.tenant_id, a.rule_id, a.stock_level_id, p.name, p.sku, COALESCE(p.category, ''),
			s.location_code, a.severity, a.status, a.message, a.created_at, a.resolved_at
		FROM alerts a
		JOIN stock_levels s ON s.tenant_id = a.tenant_id AND s.id = a.stock_level_id
		JOIN products p ON p.tenant_id = s.tenant_id AND p.id = s.product_id
`

func (r *alertRepo) list(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		err := rows.Scan(&a.ID, &a.TenantID, &a.RuleID, &a.StockLevelID, &a.ProductName, &a.SKU, &a.Category,
			&a.LocationCode, &a.Severity, &a.Status, &a.Message, &a.CreatedAt, &a.ResolvedAt)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *alertRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	return r.list(ctx, alertSelect+`
		WHERE a.tenant_id = $1
		ORDER BY a.created_at DESC
	`, tenantID)
}

// ListActiveByRule returns the rule's alerts that are active or acknowledged
func (r *alertRepo) ListActiveByRule(ctx context.Context, tenantID, ruleID uuid.UUID) ([]models.Alert, error) {
	return r.list(ctx, alertSelect+`
		WHERE a.tenant_id = $1 AND a.rule_id = $2 AND a.status IN ('active', 'acknowledged')
	`, tenantID, ruleID)
}

func (r *alertRepo) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, tenant_id, rule_id, stock_level_id, severity, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, alert.ID, alert.TenantID, alert.RuleID, alert.StockLevelID,
		alert.Severity, alert.Status, alert.Message, alert.CreatedAt)
	return err
}

// UpdateStatus sets resolved_at when status is resolved and clears it otherwise
func (r *alertRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE alerts
		SET status = $1, resolved_at = CASE WHEN $1 = 'resolved' THEN NOW() ELSE NULL END
		WHERE tenant_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepo) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	query := `DELETE FROM alerts WHERE tenant_id = $1 AND id = ANY($2) RETURNING id`
	return deleteReturning(ctx, r.db, query, tenantID, ids)
}
