// Package classify derives stock badges from quantities and thresholds.
// Results are computed on read and never stored.
package classify

// Status is the availability badge of a stock row.
type Status string

const (
	InStock    Status = "in-stock"
	LowStock   Status = "low-stock"
	OutOfStock Status = "out-of-stock"
)

// Statuses lists every Status value.
var Statuses = []string{string(InStock), string(LowStock), string(OutOfStock)}

// Level places a quantity relative to its reorder band.
type Level string

const (
	UnderMin Level = "under-min"
	Optimal  Level = "optimal"
	OverMax  Level = "over-max"
)

// Levels lists every Level value.
var Levels = []string{string(UnderMin), string(Optimal), string(OverMax)}

// DefaultOverMaxMultiplier is used when no multiplier is configured.
const DefaultOverMaxMultiplier = 2.0

// StockStatus: zero (or less) is out of stock, up to and including the
// reorder point is low, anything above is in stock.
func StockStatus(quantity, reorderPoint int) Status {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= reorderPoint:
		return LowStock
	default:
		return InStock
	}
}

// Thresholds holds the tunable parts of level classification.
type Thresholds struct {
	// OverMaxMultiplier times the reorder point is the highest optimal quantity.
	OverMaxMultiplier float64 `toml:"over_max_multiplier"`
}

// DefaultThresholds returns the thresholds used when nothing is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{OverMaxMultiplier: DefaultOverMaxMultiplier}
}

// Level classifies quantity against reorderPoint. The upper bound is inclusive
// for Optimal.
func (t Thresholds) Level(quantity, reorderPoint int) Level {
	mult := t.OverMaxMultiplier
	if mult <= 0 {
		mult = DefaultOverMaxMultiplier
	}
	switch {
	case quantity < reorderPoint:
		return UnderMin
	case float64(quantity) > float64(reorderPoint)*mult:
		return OverMax
	default:
		return Optimal
	}
}
