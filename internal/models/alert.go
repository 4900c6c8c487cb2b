package models

import (
	"time"

	"github.com/google/uuid"

	"stockroom/internal/classify"
	"stockroom/internal/listing"
)

// Alert severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert statuses
const (
	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

var (
	Severities    = []string{SeverityCritical, SeverityWarning, SeverityInfo}
	AlertStatuses = []string{AlertActive, AlertAcknowledged, AlertResolved}
)

// Alert rule conditions
const (
	ConditionOutOfStock = string(classify.OutOfStock)
	ConditionLowStock   = string(classify.LowStock)
	ConditionOverMax    = string(classify.OverMax)
)

var RuleConditions = []string{ConditionOutOfStock, ConditionLowStock, ConditionOverMax}

// Alert is raised when a stock level breaches an alert rule
type Alert struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	RuleID       uuid.UUID  `json:"rule_id" db:"rule_id"`
	StockLevelID uuid.UUID  `json:"stock_level_id" db:"stock_level_id"`
	ProductName  string     `json:"product_name" db:"product_name"`
	SKU          string     `json:"sku" db:"sku"`
	Category     string     `json:"category" db:"category"`
	LocationCode string     `json:"location_code" db:"location_code"`
	Severity     string     `json:"severity" db:"severity"`
	Status       string     `json:"status" db:"status"`
	Message      string     `json:"message" db:"message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Open reports whether the alert still needs attention
func (a Alert) Open() bool {
	return a.Status == AlertActive || a.Status == AlertAcknowledged
}

func (a Alert) RecordID() string { return a.ID.String() }

func (a Alert) SearchFields() []string {
	return []string{a.ProductName, a.SKU, a.Message}
}

func (a Alert) Attribute(name string) (string, bool) {
	switch name {
	case AttrName:
		return a.ProductName, true
	case AttrSKU:
		return a.SKU, true
	case AttrStatus:
		return a.Status, true
	case AttrSeverity:
		return a.Severity, true
	case AttrCategory:
		return a.Category, true
	case AttrLocation:
		return a.LocationCode, true
	}
	return "", false
}

func (a Alert) Numeric(name string) (float64, bool) {
	if name == AttrSeverity {
		// critical sorts above warning above info
		switch a.Severity {
		case SeverityCritical:
			return 3, true
		case SeverityWarning:
			return 2, true
		case SeverityInfo:
			return 1, true
		}
	}
	return 0, false
}

func (a Alert) Timestamp(name string) (time.Time, bool) {
	switch name {
	case AttrCreated:
		return a.CreatedAt, true
	case AttrResolved:
		if a.ResolvedAt == nil {
			return time.Time{}, false
		}
		return *a.ResolvedAt, true
	}
	return time.Time{}, false
}

// AlertRule describes when an alert is raised. Category and LocationCode
// narrow the rule's scope when set.
type AlertRule struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name         string    `json:"name" db:"name"`
	Condition    string    `json:"condition" db:"condition"`
	Severity     string    `json:"severity" db:"severity"`
	Category     *string   `json:"category,omitempty" db:"category"`
	LocationCode *string   `json:"location_code,omitempty" db:"location_code"`
	Enabled      bool      `json:"enabled" db:"enabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether s is within the rule's scope
func (r AlertRule) Covers(s StockLevel) bool {
	if r.Category != nil && *r.Category != s.Category {
		return false
	}
	if r.LocationCode != nil && listing.NormalizeKey(*r.LocationCode) != listing.NormalizeKey(s.LocationCode) {
		return false
	}
	return true
}

// Breached reports whether row meets the rule's condition
func (r AlertRule) Breached(row StockLevelRow) bool {
	switch r.Condition {
	case ConditionOutOfStock:
		return row.Status == classify.OutOfStock
	case ConditionLowStock:
		// out of stock is also below the reorder point
		return row.Status == classify.LowStock || row.Status == classify.OutOfStock
	case ConditionOverMax:
		return row.Level == classify.OverMax
	}
	return false
}
