package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockroom/internal/classify"
)

// StockLevel is the on-hand quantity of one product at one warehouse location
type StockLevel struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	SKU           string          `json:"sku" db:"sku"`
	Category      string          `json:"category" db:"category"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" db:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name" db:"warehouse_name"`
	LocationCode  string          `json:"location_code" db:"location_code"` // normalised identifier, e.g. "wh1-a-03"
	LocationName  string          `json:"location_name" db:"location_name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	ReorderPoint  int             `json:"reorder_point" db:"reorder_point"`
	UnitCost      decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// StockLevelRow is a StockLevel with its badges derived for display
type StockLevelRow struct {
	StockLevel
	Status     classify.Status `json:"status"`
	Level      classify.Level  `json:"level"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// NewStockLevelRow classifies s against t
func NewStockLevelRow(s StockLevel, t classify.Thresholds) StockLevelRow {
	return StockLevelRow{
		StockLevel: s,
		Status:     classify.StockStatus(s.Quantity, s.ReorderPoint),
		Level:      t.Level(s.Quantity, s.ReorderPoint),
		StockValue: s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity))),
	}
}

func (r StockLevelRow) RecordID() string { return r.ID.String() }

func (r StockLevelRow) SearchFields() []string {
	return []string{r.ProductName, r.SKU}
}

func (r StockLevelRow) Attribute(name string) (string, bool) {
	switch name {
	case AttrName:
		return r.ProductName, true
	case AttrSKU:
		return r.SKU, true
	case AttrCategory:
		return r.Category, true
	case AttrLocation:
		return r.LocationCode, true
	case AttrWarehouse:
		return r.WarehouseName, true
	case AttrStatus:
		return string(r.Status), true
	case AttrLevel:
		return string(r.Level), true
	}
	return "", false
}

func (r StockLevelRow) Numeric(name string) (float64, bool) {
	switch name {
	case AttrQuantity:
		return float64(r.Quantity), true
	case AttrReorder:
		return float64(r.ReorderPoint), true
	case AttrValue:
		return r.StockValue.InexactFloat64(), true
	}
	return 0, false
}

func (r StockLevelRow) Timestamp(name string) (time.Time, bool) {
	if name == AttrUpdated {
		return r.UpdatedAt, true
	}
	return time.Time{}, false
}
