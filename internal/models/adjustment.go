package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Adjustment types
const (
	AdjustmentAdd    = "add"
	AdjustmentRemove = "remove"
	AdjustmentSet    = "set"
)

// AdjustmentTypes lists the accepted adjustment types
var AdjustmentTypes = []string{AdjustmentAdd, AdjustmentRemove, AdjustmentSet}

var ErrInvalidAdjustment = errors.New("invalid stock adjustment")

// StockAdjustment records one change to a stock level
type StockAdjustment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	StockLevelID   uuid.UUID `json:"stock_level_id" db:"stock_level_id"`
	ProductName    string    `json:"product_name" db:"product_name"`
	SKU            string    `json:"sku" db:"sku"`
	LocationCode   string    `json:"location_code" db:"location_code"`
	Type           string    `json:"type" db:"type"`
	Quantity       int       `json:"quantity" db:"quantity"` // amount given by the user
	QuantityBefore int       `json:"quantity_before" db:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after" db:"quantity_after"`
	Reason         string    `json:"reason" db:"reason"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Change is the signed difference the adjustment made
func (a StockAdjustment) Change() int {
	return a.QuantityAfter - a.QuantityBefore
}

// ValidateAdjustment checks the type and amount before any stock is touched
func ValidateAdjustment(adjType string, quantity int) error {
	switch adjType {
	case AdjustmentAdd, AdjustmentRemove:
		if quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidAdjustment)
		}
	case AdjustmentSet:
		if quantity < 0 {
			return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidAdjustment)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAdjustment, adjType)
	}
	return nil
}

// ApplyAdjustment computes the quantity after adjusting current.
// Removing more than is on hand leaves zero.
func ApplyAdjustment(current int, adjType string, quantity int) (int, error) {
	if err := ValidateAdjustment(adjType, quantity); err != nil {
		return current, err
	}
	switch adjType {
	case AdjustmentAdd:
		return current + quantity, nil
	case AdjustmentRemove:
		return max(0, current-quantity), nil
	default:
		return quantity, nil
	}
}

func (a StockAdjustment) RecordID() string { return a.ID.String() }

func (a StockAdjustment) SearchFields() []string {
	return []string{a.ProductName, a.SKU, a.Reason}
}

func (a StockAdjustment) Attribute(name string) (string, bool) {
	switch name {
	case AttrName:
		return a.ProductName, true
	case AttrSKU:
		return a.SKU, true
	case AttrType:
		return a.Type, true
	case AttrLocation:
		return a.LocationCode, true
	}
	return "", false
}

func (a StockAdjustment) Numeric(name string) (float64, bool) {
	switch name {
	case AttrChange:
		return float64(a.Change()), true
	case AttrQuantity:
		return float64(a.QuantityAfter), true
	}
	return 0, false
}

func (a StockAdjustment) Timestamp(name string) (time.Time, bool) {
	if name == AttrCreated {
		return a.CreatedAt, true
	}
	return time.Time{}, false
}
