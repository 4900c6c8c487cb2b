package services

import (
	"stockroom/internal/classify"
	"stockroom/internal/listing"
	"stockroom/internal/models"
)

// View names, shared with the collection cache keys
const (
	ViewStockLevels        = "stock-levels"
	ViewAdjustments        = "adjustments"
	ViewAlerts             = "alerts"
	ViewTransfers          = "transfers"
	ViewWarehouseInventory = "warehouse-inventory"
)

// Views holds the schema of every list view
type Views struct {
	StockLevels        listing.Schema
	Adjustments        listing.Schema
	Alerts             listing.Schema
	Transfers          listing.Schema
	WarehouseInventory listing.Schema
}

// NewViews builds the list schemas with the configured paging
func NewViews(pageSizes []int, defaultPageSize int) Views {
	paged := func(s listing.Schema) listing.Schema {
		s.PageSizes = pageSizes
		s.DefaultPageSize = defaultPageSize
		return s
	}

	return Views{
		StockLevels: paged(listing.Schema{
			View: ViewStockLevels,
			Filters: []listing.FilterAxis{
				{Param: "status", Attribute: models.AttrStatus, Options: classify.Statuses},
				{Param: "category", Attribute: models.AttrCategory},
				{Param: "location", Attribute: models.AttrLocation, Match: listing.MatchNormalized},
				{Param: "level", Attribute: models.AttrLevel, Options: classify.Levels},
			},
			SortFields: []listing.SortField{
				{Name: models.AttrName},
				{Name: models.AttrSKU},
				{Name: models.AttrCategory},
				{Name: models.AttrLocation},
				{Name: models.AttrWarehouse},
				{Name: models.AttrQuantity, Kind: listing.SortNumber},
				{Name: models.AttrReorder, Kind: listing.SortNumber},
				{Name: models.AttrValue, Kind: listing.SortNumber},
				{Name: models.AttrUpdated, Kind: listing.SortTime},
			},
			DefaultSort: listing.SortSpec{Field: models.AttrName, Direction: listing.Asc},
		}),
		Adjustments: paged(listing.Schema{
			View: ViewAdjustments,
			Filters: []listing.FilterAxis{
				{Param: "type", Attribute: models.AttrType, Options: models.AdjustmentTypes},
				{Param: "location", Attribute: models.AttrLocation, Match: listing.MatchNormalized},
			},
			DateAttribute: models.AttrCreated,
			SortFields: []listing.SortField{
				{Name: models.AttrCreated, Kind: listing.SortTime},
				{Name: models.AttrName},
				{Name: models.AttrSKU},
				{Name: models.AttrType},
				{Name: models.AttrChange, Kind: listing.SortNumber},
				{Name: models.AttrQuantity, Kind: listing.SortNumber},
			},
			DefaultSort: listing.SortSpec{Field: models.AttrCreated, Direction: listing.Desc},
		}),
		Alerts: paged(listing.Schema{
			View: ViewAlerts,
			Filters: []listing.FilterAxis{
				{Param: "status", Attribute: models.AttrStatus, Options: models.AlertStatuses},
				{Param: "severity", Attribute: models.AttrSeverity, Options: models.Severities},
				{Param: "category", Attribute: models.AttrCategory},
			},
			DateAttribute: models.AttrCreated,
			SortFields: []listing.SortField{
				{Name: models.AttrCreated, Kind: listing.SortTime},
				{Name: models.AttrSeverity, Kind: listing.SortNumber},
				{Name: models.AttrName},
				{Name: models.AttrStatus},
				{Name: models.AttrResolved, Kind: listing.SortTime},
			},
			DefaultSort: listing.SortSpec{Field: models.AttrCreated, Direction: listing.Desc},
		}),
		Transfers: paged(listing.Schema{
			View: ViewTransfers,
			Filters: []listing.FilterAxis{
				{Param: "status", Attribute: models.AttrStatus, Options: models.TransferStatuses},
				{Param: "source", Attribute: models.AttrSource, Match: listing.MatchNormalized},
				{Param: "destination", Attribute: models.AttrDestination, Match: listing.MatchNormalized},
			},
			DateAttribute: models.AttrCreated,
			SortFields: []listing.SortField{
				{Name: models.AttrCreated, Kind: listing.SortTime},
				{Name: models.AttrArrival, Kind: listing.SortTime},
				{Name: models.AttrReference},
				{Name: models.AttrName},
				{Name: models.AttrStatus},
				{Name: models.AttrQuantity, Kind: listing.SortNumber},
			},
			DefaultSort: listing.SortSpec{Field: models.AttrCreated, Direction: listing.Desc},
		}),
		WarehouseInventory: paged(listing.Schema{
			View: ViewWarehouseInventory,
			Filters: []listing.FilterAxis{
				{Param: "status", Attribute: models.AttrStatus, Options: classify.Statuses},
				{Param: "category", Attribute: models.AttrCategory},
				{Param: "location", Attribute: models.AttrLocation, Match: listing.MatchNormalized},
				{Param: "level", Attribute: models.AttrLevel, Options: classify.Levels},
				{Param: "zone", Attribute: models.AttrZone, Match: listing.MatchNormalized},
			},
			DateAttribute: models.AttrReceived,
			SortFields: []listing.SortField{
				{Name: models.AttrName},
				{Name: models.AttrSKU},
				{Name: models.AttrLocation},
				{Name: models.AttrZone},
				{Name: models.AttrQuantity, Kind: listing.SortNumber},
				{Name: models.AttrReorder, Kind: listing.SortNumber},
				{Name: models.AttrReceived, Kind: listing.SortTime},
			},
			DefaultSort: listing.SortSpec{Field: models.AttrLocation, Direction: listing.Asc},
		}),
	}
}

// Lookup returns the schema registered under view
func (v Views) Lookup(view string) (listing.Schema, bool) {
	switch view {
	case ViewStockLevels:
		return v.StockLevels, true
	case ViewAdjustments:
		return v.Adjustments, true
	case ViewAlerts:
		return v.Alerts, true
	case ViewTransfers:
		return v.Transfers, true
	case ViewWarehouseInventory:
		return v.WarehouseInventory, true
	}
	return listing.Schema{}, false
}
