package models

import (
	"time"

	"github.com/google/uuid"
)

// Transfer statuses
const (
	TransferPending   = "pending"
	TransferInTransit = "in-transit"
	TransferCompleted = "completed"
	TransferCancelled = "cancelled"
)

var TransferStatuses = []string{TransferPending, TransferInTransit, TransferCompleted, TransferCancelled}

// transferTransitions lists the statuses reachable from each status
var transferTransitions = map[string][]string{
	TransferPending:   {TransferInTransit, TransferCancelled},
	TransferInTransit: {TransferCompleted, TransferCancelled},
}

// CanTransition reports whether a transfer may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range transferTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transfer moves a quantity of one product between two warehouses
type Transfer struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	TenantID               uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Reference              string     `json:"reference" db:"reference"` // tracking identifier
	ProductID              uuid.UUID  `json:"product_id" db:"product_id"`
	ProductName            string     `json:"product_name" db:"product_name"`
	SKU                    string     `json:"sku" db:"sku"`
	SourceWarehouseID      uuid.UUID  `json:"source_warehouse_id" db:"source_warehouse_id"`
	SourceName             string     `json:"source_name" db:"source_name"`
	DestinationWarehouseID uuid.UUID  `json:"destination_warehouse_id" db:"destination_warehouse_id"`
	DestinationName        string     `json:"destination_name" db:"destination_name"`
	Quantity               int        `json:"quantity" db:"quantity"`
	Status                 string     `json:"status" db:"status"`
	Notes                  *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	EstimatedArrival       *time.Time `json:"estimated_arrival,omitempty" db:"estimated_arrival"`
	CompletedAt            *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

func (t Transfer) RecordID() string { return t.ID.String() }

func (t Transfer) SearchFields() []string {
	return []string{t.Reference, t.ProductName, t.SKU}
}

func (t Transfer) Attribute(name string) (string, bool) {
	switch name {
	case AttrReference:
		return t.Reference, true
	case AttrName:
		return t.ProductName, true
	case AttrSKU:
		return t.SKU, true
	case AttrStatus:
		return t.Status, true
	case AttrSource:
		return t.SourceWarehouseID.String(), true
	case AttrDestination:
		return t.DestinationWarehouseID.String(), true
	}
	return "", false
}

func (t Transfer) Numeric(name string) (float64, bool) {
	if name == AttrQuantity {
		return float64(t.Quantity), true
	}
	return 0, false
}

func (t Transfer) Timestamp(name string) (time.Time, bool) {
	switch name {
	case AttrCreated:
		return t.CreatedAt, true
	case AttrArrival:
		if t.EstimatedArrival == nil {
			return time.Time{}, false
		}
		return *t.EstimatedArrival, true
	}
	return time.Time{}, false
}
