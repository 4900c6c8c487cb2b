package repositories

import (
	"context"
	"time"

	"stockroom/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AdjustmentRepository interface {
	Apply(ctx context.Context, tenantID, stockLevelID uuid.UUID, adjType string, quantity int, reason string) (*models.StockAdjustment, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockAdjustment, error)
}

type adjustmentRepo struct {
	db DBTX
}

func NewAdjustmentRepo(db DBTX) AdjustmentRepository {
	return &adjustmentRepo{db: db}
}

// Apply locks the stock level, writes the adjusted quantity and records the
// adjustment in one transaction.
func (r *adjustmentRepo) Apply(ctx context.Context, tenantID, stockLevelID uuid.UUID, adjType string, quantity int, reason string) (*models.StockAdjustment, error) {
	adj := &models.StockAdjustment{
		ID:           uuid.New(),
		TenantID:     tenantID,
		StockLevelID: stockLevelID,
		Type:         adjType,
		Quantity:     quantity,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		lock := `
		SELECT s.quantity, p.name, p.sku, s.location_code
		FROM stock_levels s
		JOIN products p ON p.tenant_id = s.tenant_id AND p.id = s.product_id
		WHERE s.tenant_id = $1 AND s.id = $2
		FOR UPDATE OF s
		`
		err := tx.QueryRow(ctx, lock, tenantID, stockLevelID).Scan(&adj.QuantityBefore, &adj.ProductName, &adj.SKU, &adj.LocationCode)
		if err != nil {
			return notFound(err)
		}

		adj.QuantityAfter, err = models.ApplyAdjustment(adj.QuantityBefore, adjType, quantity)
		if err != nil {
			return err
		}

		update := `UPDATE stock_levels SET quantity = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
		if _, err := tx.Exec(ctx, update, adj.QuantityAfter, tenantID, stockLevelID); err != nil {
			return err
		}

		insert := `
		INSERT INTO stock_adjustments (id, tenant_id, stock_level_id, type, quantity, quantity_before, quantity_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.Exec(ctx, insert, adj.ID, adj.TenantID, adj.StockLevelID, adj.Type, adj.Quantity,
			adj.QuantityBefore, adj.QuantityAfter, adj.Reason, adj.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (r *adjustmentRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockAdjustment, error) {
	query := `
		SELECT a.id, a.tenant_id, a.stock_level_id, p.name, p.sku, s.location_code,
			a.type, a.quantity, a.quantity_before, a.quantity_after, COALESCE(a.reason, ''), a.created_at
		FROM stock_adjustments a
		JOIN stock_levels s ON s.tenant_id = a.tenant_id AND s.id = a.stock_level_id
		JOIN products p ON p.tenant_id = s.tenant_id AND p.id = s.product_id
		WHERE a.tenant_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := []models.StockAdjustment{}
	for rows.Next() {
		var a models.StockAdjustment
		err := rows.Scan(&a.ID, &a.TenantID, &a.StockLevelID, &a.ProductName, &a.SKU, &a.LocationCode,
			&a.Type, &a.Quantity, &a.QuantityBefore, &a.QuantityAfter, &a.Reason, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}
