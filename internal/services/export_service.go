package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockroom/internal/listing"
	"stockroom/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// ExportRequest selects the view, its query state and the output format
type ExportRequest struct {
	View        string
	Format      string
	Query       url.Values
	WarehouseID uuid.UUID // warehouse-inventory only
}

type ExportService interface {
	Export(ctx context.Context, tenantID uuid.UUID, req ExportRequest) (*models.ExportResult, error)
}

type exportService struct {
	stockLevels StockLevelService
	adjustments AdjustmentService
	alerts      AlertService
	transfers   TransferService
	inventory   WarehouseInventoryService
	store       MinioService
	bucket      string
	expiry      time.Duration
	now         func() time.Time
}

func NewExportService(stockLevels StockLevelService, adjustments AdjustmentService, alerts AlertService, transfers TransferService, inventory WarehouseInventoryService, store MinioService, bucket string, expiry time.Duration) ExportService {
	return &exportService{
		stockLevels: stockLevels,
		adjustments: adjustments,
		alerts:      alerts,
		transfers:   transfers,
		inventory:   inventory,
		store:       store,
		bucket:      bucket,
		expiry:      expiry,
		now:         time.Now,
	}
}

// table is a rendered view ready for any output format
type table struct {
	title   string
	headers []string
	rows    [][]string
}

type column[T any] struct {
	header string
	value  func(T) string
}

// buildTable applies the view's filters and sort, ignoring pagination
func buildTable[T listing.Filterable](title string, records []T, st listing.State, schema listing.Schema, now time.Time, cols []column[T]) table {
	ordered := listing.Ordered(records, st, schema, now)
	t := table{title: title, headers: make([]string, len(cols)), rows: make([][]string, 0, len(ordered))}
	for i, c := range cols {
		t.headers[i] = c.header
	}
	for _, r := range ordered {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(r)
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func (s *exportService) Export(ctx context.Context, tenantID uuid.UUID, req ExportRequest) (*models.ExportResult, error) {
	format := strings.ToLower(req.Format)
	if format == "" {
		format = models.ExportCSV
	}
	if format != models.ExportCSV && format != models.ExportPDF {
		return nil, fmt.Errorf("%w: format must be csv or pdf", ErrValidation)
	}

	t, err := s.table(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	var data []byte
	contentType := "text/csv"
	if format == models.ExportPDF {
		data, err = renderPDF(t, s.now())
		contentType = "application/pdf"
	} else {
		data, err = renderCSV(t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	now := s.now().UTC()
	objectName := fmt.Sprintf("%s/%s/%s-%s.%s", tenantID, req.View, now.Format("20060102-150405"), uuid.NewString()[:8], format)
	if err := s.store.Upload(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}
	downloadURL, err := s.store.GetPresignedURL(ctx, s.bucket, objectName, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}

	return &models.ExportResult{
		View:        req.View,
		Format:      format,
		ObjectName:  objectName,
		Rows:        len(t.rows),
		DownloadURL: downloadURL,
		ExpiresAt:   now.Add(s.expiry),
	}, nil
}

func (s *exportService) table(ctx context.Context, tenantID uuid.UUID, req ExportRequest) (table, error) {
	now := s.now()
	switch req.View {
	case ViewStockLevels:
		schema := s.stockLevels.Schema()
		rows, err := s.stockLevels.Rows(ctx, tenantID)
		if err != nil {
			return table{}, err
		}
		return buildTable("Stock levels", rows, listing.Decode(req.Query, schema), schema, now, stockLevelColumns), nil
	case ViewAdjustments:
		schema := s.adjustments.Schema()
		rows, err := s.adjustments.Rows(ctx, tenantID)
		if err != nil {
			return table{}, err
		}
		return buildTable("Stock adjustments", rows, listing.Decode(req.Query, schema), schema, now, adjustmentColumns), nil
	case ViewAlerts:
		schema := s.alerts.Schema()
		rows, err := s.alerts.Rows(ctx, tenantID)
		if err != nil {
			return table{}, err
		}
		return buildTable("Alerts", rows, listing.Decode(req.Query, schema), schema, now, alertColumns), nil
	case ViewTransfers:
		schema := s.transfers.Schema()
		rows, err := s.transfers.Rows(ctx, tenantID)
		if err != nil {
			return table{}, err
		}
		return buildTable("Transfers", rows, listing.Decode(req.Query, schema), schema, now, transferColumns), nil
	case ViewWarehouseInventory:
		if req.WarehouseID == uuid.Nil {
			return table{}, fmt.Errorf("%w: warehouse_id is required for warehouse inventory exports", ErrValidation)
		}
		schema := s.inventory.Schema()
		rows, err := s.inventory.Rows(ctx, tenantID, req.WarehouseID)
		if err != nil {
			return table{}, err
		}
		return buildTable("Warehouse inventory", rows, listing.Decode(req.Query, schema), schema, now, inventoryColumns), nil
	}
	return table{}, fmt.Errorf("%w: %q", ErrUnknownView, req.View)
}

const exportTimeLayout = "2006-01-02 15:04"

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeLayout)
}

var stockLevelColumns = []column[models.StockLevelRow]{
	{"Product", func(r models.StockLevelRow) string { return r.ProductName }},
	{"SKU", func(r models.StockLevelRow) string { return r.SKU }},
	{"Category", func(r models.StockLevelRow) string { return r.Category }},
	{"Warehouse", func(r models.StockLevelRow) string { return r.WarehouseName }},
	{"Location", func(r models.StockLevelRow) string { return r.LocationCode }},
	{"Quantity", func(r models.StockLevelRow) string { return strconv.Itoa(r.Quantity) }},
	{"Reorder point", func(r models.StockLevelRow) string { return strconv.Itoa(r.ReorderPoint) }},
	{"Status", func(r models.StockLevelRow) string { return string(r.Status) }},
	{"Level", func(r models.StockLevelRow) string { return string(r.Level) }},
	{"Value", func(r models.StockLevelRow) string { return r.StockValue.StringFixed(2) }},
}

var adjustmentColumns = []column[models.StockAdjustment]{
	{"Date", func(a models.StockAdjustment) string { return a.CreatedAt.Format(exportTimeLayout) }},
	{"Product", func(a models.StockAdjustment) string { return a.ProductName }},
	{"SKU", func(a models.StockAdjustment) string { return a.SKU }},
	{"Location", func(a models.StockAdjustment) string { return a.LocationCode }},
	{"Type", func(a models.StockAdjustment) string { return a.Type }},
	{"Before", func(a models.StockAdjustment) string { return strconv.Itoa(a.QuantityBefore) }},
	{"Change", func(a models.StockAdjustment) string { return fmt.Sprintf("%+d", a.Change()) }},
	{"After", func(a models.StockAdjustment) string { return strconv.Itoa(a.QuantityAfter) }},
	{"Reason", func(a models.StockAdjustment) string { return a.Reason }},
}

var alertColumns = []column[models.Alert]{
	{"Raised", func(a models.Alert) string { return a.CreatedAt.Format(exportTimeLayout) }},
	{"Severity", func(a models.Alert) string { return a.Severity }},
	{"Status", func(a models.Alert) string { return a.Status }},
	{"Product", func(a models.Alert) string { return a.ProductName }},
	{"SKU", func(a models.Alert) string { return a.SKU }},
	{"Location", func(a models.Alert) string { return a.LocationCode }},
	{"Message", func(a models.Alert) string { return a.Message }},
	{"Resolved", func(a models.Alert) string { return formatTime(a.ResolvedAt) }},
}

var transferColumns = []column[models.Transfer]{
	{"Reference", func(t models.Transfer) string { return t.Reference }},
	{"Product", func(t models.Transfer) string { return t.ProductName }},
	{"SKU", func(t models.Transfer) string { return t.SKU }},
	{"From", func(t models.Transfer) string { return t.SourceName }},
	{"To", func(t models.Transfer) string { return t.DestinationName }},
	{"Quantity", func(t models.Transfer) string { return strconv.Itoa(t.Quantity) }},
	{"Status", func(t models.Transfer) string { return t.Status }},
	{"Created", func(t models.Transfer) string { return t.CreatedAt.Format(exportTimeLayout) }},
	{"ETA", func(t models.Transfer) string { return formatTime(t.EstimatedArrival) }},
}

var inventoryColumns = []column[models.WarehouseInventoryRow]{
	{"Location", func(r models.WarehouseInventoryRow) string { return r.LocationCode }},
	{"Zone", func(r models.WarehouseInventoryRow) string { return r.Zone }},
	{"Rack", func(r models.WarehouseInventoryRow) string { return r.Rack }},
	{"Bin", func(r models.WarehouseInventoryRow) string { return r.Bin }},
	{"Product", func(r models.WarehouseInventoryRow) string { return r.ProductName }},
	{"SKU", func(r models.WarehouseInventoryRow) string { return r.SKU }},
	{"Quantity", func(r models.WarehouseInventoryRow) string { return strconv.Itoa(r.Quantity) }},
	{"Status", func(r models.WarehouseInventoryRow) string { return string(r.Status) }},
	{"Received", func(r models.WarehouseInventoryRow) string { return formatTime(r.ReceivedAt) }},
}

func renderCSV(t table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(t table, printedAt time.Time) ([]byte, error) {
	const (
		margin     = 10.0
		pageWidth  = 297.0
		pageHeight = 210.0
		rowHeight  = 7.0
	)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	colWidth := (pageWidth - 2*margin) / float64(max(1, len(t.headers)))
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		for _, h := range t.headers {
			pdf.CellFormat(colWidth, rowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(33, 37, 41)
	pdf.Cell(0, 8, tr(t.title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(0, 5, fmt.Sprintf("%d rows, generated %s", len(t.rows), printedAt.Format(exportTimeLayout)))
	pdf.Ln(8)
	header()

	for _, row := range t.rows {
		if pdf.GetY()+rowHeight > pageHeight-margin {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colWidth, rowHeight, fitText(pdf, tr(cell), colWidth-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitText shortens s until it fits in width at the current font
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..") > width {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}
