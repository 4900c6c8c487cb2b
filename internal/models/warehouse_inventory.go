package models

import (
	"time"

	"github.com/google/uuid"

	"stockroom/internal/classify"
)

// WarehouseInventoryItem is a stock level seen from inside one warehouse,
// with its zone/rack/bin placement
type WarehouseInventoryItem struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	WarehouseID  uuid.UUID  `json:"warehouse_id" db:"warehouse_id"`
	ProductName  string     `json:"product_name" db:"product_name"`
	SKU          string     `json:"sku" db:"sku"`
	Category     string     `json:"category" db:"category"`
	Zone         string     `json:"zone" db:"zone"`
	Rack         string     `json:"rack" db:"rack"`
	Bin          string     `json:"bin" db:"bin"`
	LocationCode string     `json:"location_code" db:"location_code"`
	Quantity     int        `json:"quantity" db:"quantity"`
	ReorderPoint int        `json:"reorder_point" db:"reorder_point"`
	ReceivedAt   *time.Time `json:"received_at,omitempty" db:"received_at"`
}

// WarehouseInventoryRow adds the derived badges
type WarehouseInventoryRow struct {
	WarehouseInventoryItem
	Status classify.Status `json:"status"`
	Level  classify.Level  `json:"level"`
}

func NewWarehouseInventoryRow(item WarehouseInventoryItem, t classify.Thresholds) WarehouseInventoryRow {
	return WarehouseInventoryRow{
		WarehouseInventoryItem: item,
		Status:                 classify.StockStatus(item.Quantity, item.ReorderPoint),
		Level:                  t.Level(item.Quantity, item.ReorderPoint),
	}
}

func (r WarehouseInventoryRow) RecordID() string { return r.ID.String() }

func (r WarehouseInventoryRow) SearchFields() []string {
	return []string{r.ProductName, r.SKU}
}

func (r WarehouseInventoryRow) Attribute(name string) (string, bool) {
	switch name {
	case AttrName:
		return r.ProductName, true
	case AttrSKU:
		return r.SKU, true
	case AttrCategory:
		return r.Category, true
	case AttrLocation:
		return r.LocationCode, true
	case AttrZone:
		return r.Zone, true
	case AttrStatus:
		return string(r.Status), true
	case AttrLevel:
		return string(r.Level), true
	}
	return "", false
}

func (r WarehouseInventoryRow) Numeric(name string) (float64, bool) {
	switch name {
	case AttrQuantity:
		return float64(r.Quantity), true
	case AttrReorder:
		return float64(r.ReorderPoint), true
	}
	return 0, false
}

func (r WarehouseInventoryRow) Timestamp(name string) (time.Time, bool) {
	if name == AttrReceived && r.ReceivedAt != nil {
		return *r.ReceivedAt, true
	}
	return time.Time{}, false
}
