package repositories

import (
	"context"

	"stockroom/internal/models"

	"github.com/google/uuid"
)

type StockLevelRepository interface {
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevel, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

type stockLevelRepo struct {
	db DBTX
}

func NewStockLevelRepo(db DBTX) StockLevelRepository {
	return &stockLevelRepo{db: db}
}

const stockLevelSelect = `
		SELECT s.id, s.tenant_id, s.product_id, p.name, p.sku, COALESCE(p.category, ''),
			s.warehouse_id, w.name, s.location_code, s.location_name,
			s.quantity, s.reorder_point, p.unit_cost::text, s.updated_at
		FROM stock_levels s
		JOIN products p ON p.tenant_id = s.tenant_id AND p.id = s.product_id
		JOIN warehouses w ON w.tenant_id = s.tenant_id AND w.id = s.warehouse_id
`

func scanStockLevel(row scanner) (models.StockLevel, error) {
	var s models.StockLevel
	var unitCost string
	err := row.Scan(&s.ID, &s.TenantID, &s.ProductID, &s.ProductName, &s.SKU, &s.Category,
		&s.WarehouseID, &s.WarehouseName, &s.LocationCode, &s.LocationName,
		&s.Quantity, &s.ReorderPoint, &unitCost, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.UnitCost, err = parseMoney(unitCost)
	return s, err
}

func (r *stockLevelRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.StockLevel, error) {
	query := stockLevelSelect + `
		WHERE s.tenant_id = $1
		ORDER BY p.name, s.location_code
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []models.StockLevel{}
	for rows.Next() {
		s, err := scanStockLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, s)
	}
	return levels, rows.Err()
}

func (r *stockLevelRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.StockLevel, error) {
	query := stockLevelSelect + `
		WHERE s.tenant_id = $1 AND s.id = $2
	`
	s, err := scanStockLevel(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *stockLevelRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM stock_levels WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the given stock levels and returns the ids that existed
func (r *stockLevelRepo) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	query := `DELETE FROM stock_levels WHERE tenant_id = $1 AND id = ANY($2) RETURNING id`
	return deleteReturning(ctx, r.db, query, tenantID, ids)
}

// ListTenantIDs returns every tenant holding stock, for background jobs
func (r *stockLevelRepo) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tenant_id FROM stock_levels`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
