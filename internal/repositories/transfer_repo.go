package repositories

import (
	"context"

	"stockroom/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransferRepository interface {
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transfer, error)
	Create(ctx context.Context, transfer *models.Transfer) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to string) error
	Complete(ctx context.Context, tenantID, id uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type transferRepo struct {
	db DBTX
}

func NewTransferRepo(db DBTX) TransferRepository {
	return &transferRepo{db: db}
}

// ReceivingLocation is where completed transfers land in the destination warehouse
const ReceivingLocation = "receiving"

const transferSelect = `
		SELECT t.id, t.tenant_id, t.reference, t.product_id, p.name, p.sku,
			t.source_warehouse_id, src.name, t.destination_warehouse_id, dst.name,
			t.quantity, t.status, t.notes, t.created_at, t.estimated_arrival, t.completed_at
		FROM transfers t
		JOIN products p ON p.tenant_id = t.tenant_id AND p.id = t.product_id
		JOIN warehouses src ON src.tenant_id = t.tenant_id AND src.id = t.source_warehouse_id
		JOIN warehouses dst ON dst.tenant_id = t.tenant_id AND dst.id = t.destination_warehouse_id
`

func scanTransfer(row scanner) (models.Transfer, error) {
	var t models.Transfer
	err := row.Scan(&t.ID, &t.TenantID, &t.Reference, &t.ProductID, &t.ProductName, &t.SKU,
		&t.SourceWarehouseID, &t.SourceName, &t.DestinationWarehouseID, &t.DestinationName,
		&t.Quantity, &t.Status, &t.Notes, &t.CreatedAt, &t.EstimatedArrival, &t.CompletedAt)
	return t, err
}

func (r *transferRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Transfer, error) {
	rows, err := r.db.Query(ctx, transferSelect+`
		WHERE t.tenant_id = $1
		ORDER BY t.created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []models.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *transferRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transfer, error) {
	t, err := scanTransfer(r.db.QueryRow(ctx, transferSelect+`
		WHERE t.tenant_id = $1 AND t.id = $2
	`, tenantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *transferRepo) Create(ctx context.Context, t *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, tenant_id, reference, product_id, source_warehouse_id, destination_warehouse_id,
			quantity, status, notes, created_at, estimated_arrival)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.TenantID, t.Reference, t.ProductID, t.SourceWarehouseID,
		t.DestinationWarehouseID, t.Quantity, t.Status, t.Notes, t.CreatedAt, t.EstimatedArrival)
	return err
}

// UpdateStatus moves the transfer from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (r *transferRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to string) error {
	query := `UPDATE transfers SET status = $1 WHERE tenant_id = $2 AND id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, query, to, tenantID, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Complete moves the transferred quantity out of the best-stocked source row
// into the destination's receiving location and marks the transfer completed.
func (r *transferRepo) Complete(ctx context.Context, tenantID, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var productID, sourceID, destinationID uuid.UUID
		var quantity int
		var status string
		lock := `
		SELECT product_id, source_warehouse_id, destination_warehouse_id, quantity, status
		FROM transfers
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
		`
		err := tx.QueryRow(ctx, lock, tenantID, id).Scan(&productID, &sourceID, &destinationID, &quantity, &status)
		if err != nil {
			return notFound(err)
		}
		if status != models.TransferInTransit {
			return ErrStatusConflict
		}

		take := `
		UPDATE stock_levels SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM stock_levels
			WHERE tenant_id = $2 AND product_id = $3 AND warehouse_id = $4 AND quantity >= $1
			ORDER BY quantity DESC
			LIMIT 1
			FOR UPDATE
		)
		`
		tag, err := tx.Exec(ctx, take, quantity, tenantID, productID, sourceID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInsufficientStock
		}

		put := `
		INSERT INTO stock_levels (id, tenant_id, product_id, warehouse_id, location_code, location_name, quantity, reorder_point, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'Receiving', $6, 0, NOW())
		ON CONFLICT (tenant_id, product_id, warehouse_id, location_code)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, put, uuid.New(), tenantID, productID, destinationID, ReceivingLocation, quantity); err != nil {
			return err
		}

		done := `UPDATE transfers SET status = $1, completed_at = NOW() WHERE tenant_id = $2 AND id = $3`
		_, err = tx.Exec(ctx, done, models.TransferCompleted, tenantID, id)
		return err
	})
}

func (r *transferRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transfers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
