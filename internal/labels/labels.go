// Package labels renders SKU barcodes and printable shelf labels.
package labels

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

const (
	DefaultWidth  = 300
	DefaultHeight = 80
	maxDimension  = 2000
)

var ErrEmptySKU = errors.New("sku is empty")

// Label is the content of one shelf label
type Label struct {
	ProductName  string
	SKU          string
	LocationCode string
	Warehouse    string
}

// BarcodePNG renders sku as a Code 128 barcode. Non-positive sizes use the defaults.
func BarcodePNG(sku string, width, height int) ([]byte, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	width, height = min(width, maxDimension), min(height, maxDimension)

	code, err := code128.Encode(sku)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", sku, err)
	}
	// the scaled width cannot be narrower than the symbol
	width = max(width, code.Bounds().Dx())
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}

// LabelPDF lays out one 100x50mm label per page
func LabelPDF(labels []Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, errors.New("no labels to render")
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 100, Ht: 50},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 0)

	for i, l := range labels {
		img, err := BarcodePNG(l.SKU, 600, 160)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("sku-%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))

		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(4, 4)
		pdf.CellFormat(92, 6, truncate(l.ProductName, 40), "", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(4, 10)
		pdf.CellFormat(92, 4, strings.TrimSpace(l.Warehouse+" "+l.LocationCode), "", 0, "L", false, 0, "")

		pdf.ImageOptions(name, 4, 16, 92, 22, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetFont("Courier", "B", 10)
		pdf.SetXY(4, 40)
		pdf.CellFormat(92, 5, l.SKU, "", 0, "C", false, 0, "")
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

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(0, n-3)]) + "..."
}
