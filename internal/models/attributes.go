package models

// Row attribute names. List view schemas, sort specs and the Filterable
// implementations below all refer to fields through these.
const (
	AttrName        = "name"
	AttrSKU         = "sku"
	AttrCategory    = "category"
	AttrLocation    = "location"
	AttrWarehouse   = "warehouse"
	AttrZone        = "zone"
	AttrStatus      = "status"
	AttrLevel       = "level"
	AttrSeverity    = "severity"
	AttrType        = "type"
	AttrSource      = "source"
	AttrDestination = "destination"
	AttrReference   = "reference"

	AttrQuantity = "quantity"
	AttrReorder  = "reorder"
	AttrValue    = "value"
	AttrChange   = "change"

	AttrUpdated  = "updated"
	AttrCreated  = "created"
	AttrArrival  = "arrival"
	AttrReceived = "received"
	AttrResolved = "resolved"
)
