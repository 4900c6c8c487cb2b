package repositories

import (
	"context"

	"stockroom/internal/models"

	"github.com/google/uuid"
)

type WarehouseInventoryRepository interface {
	ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.WarehouseInventoryItem, error)
}

type warehouseInventoryRepo struct {
	db DBTX
}

func NewWarehouseInventoryRepo(db DBTX) WarehouseInventoryRepository {
	return &warehouseInventoryRepo{db: db}
}

func (r *warehouseInventoryRepo) ListByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]models.WarehouseInventoryItem, error) {
	query := `
		SELECT s.id, s.warehouse_id, p.name, p.sku, COALESCE(p.category, ''),
			COALESCE(l.zone, ''), COALESCE(l.rack, ''), COALESCE(l.bin, ''), s.location_code,
			s.quantity, s.reorder_point, s.received_at
		FROM stock_levels s
		JOIN products p ON p.tenant_id = s.tenant_id AND p.id = s.product_id
		LEFT JOIN locations l ON l.tenant_id = s.tenant_id AND l.warehouse_id = s.warehouse_id AND l.code = s.location_code
		WHERE s.tenant_id = $1 AND s.warehouse_id = $2
		ORDER BY s.location_code, p.name
	`
	rows, err := r.db.Query(ctx, query, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.WarehouseInventoryItem{}
	for rows.Next() {
		var it models.WarehouseInventoryItem
		err := rows.Scan(&it.ID, &it.WarehouseID, &it.ProductName, &it.SKU, &it.Category,
			&it.Zone, &it.Rack, &it.Bin, &it.LocationCode, &it.Quantity, &it.ReorderPoint, &it.ReceivedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
