package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BulkDeleteRequest is the payload of every bulk-delete endpoint
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// BulkOperationResult represents the result of a bulk operation
type BulkOperationResult struct {
	OperationID    string               `json:"operation_id"`
	Status         string               `json:"status"` // "completed", "partial", "failed"
	TotalItems     int                  `json:"total_items"`
	ProcessedItems int                  `json:"processed_items"`
	FailedItems    int                  `json:"failed_items"`
	StartTime      time.Time            `json:"start_time"`
	CompletionTime *time.Time           `json:"completion_time,omitempty"`
	Errors         []BulkOperationError `json:"errors,omitempty"`
	Items          []BulkOperationItem  `json:"items,omitempty"`
}

// BulkOperationError represents an error for a specific item in bulk operation
type BulkOperationError struct {
	ItemIndex int    `json:"item_index"`
	ItemID    string `json:"item_id"`
	Error     string `json:"error"`
}

// BulkOperationItem represents the result for a specific item
type BulkOperationItem struct {
	ItemIndex int     `json:"item_index"`
	ItemID    string  `json:"item_id"`
	Status    string  `json:"status"` // "success", "failed"
	Error     *string `json:"error,omitempty"`
}

// NewBulkOperationResult starts a result for total items
func NewBulkOperationResult(kind string, total int) *BulkOperationResult {
	now := time.Now()
	return &BulkOperationResult{
		OperationID: fmt.Sprintf("%s_%d", kind, now.UnixNano()),
		Status:      "processing",
		TotalItems:  total,
		StartTime:   now,
		Errors:      []BulkOperationError{},
		Items:       []BulkOperationItem{},
	}
}

// Succeed records a processed item
func (r *BulkOperationResult) Succeed(index int, id string) {
	r.ProcessedItems++
	r.Items = append(r.Items, BulkOperationItem{ItemIndex: index, ItemID: id, Status: "success"})
}

// Fail records a failed item
func (r *BulkOperationResult) Fail(index int, id string, err error) {
	msg := err.Error()
	r.FailedItems++
	r.Errors = append(r.Errors, BulkOperationError{ItemIndex: index, ItemID: id, Error: msg})
	r.Items = append(r.Items, BulkOperationItem{ItemIndex: index, ItemID: id, Status: "failed", Error: &msg})
}

// Finish stamps the completion time and settles the final status
func (r *BulkOperationResult) Finish() {
	now := time.Now()
	r.CompletionTime = &now
	switch {
	case r.FailedItems == 0:
		r.Status = "completed"
	case r.ProcessedItems > 0:
		r.Status = "partial"
	default:
		r.Status = "failed"
	}
}
