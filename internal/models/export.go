package models

import "time"

// Export formats
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

// ExportResult points at a rendered list view stored in object storage
type ExportResult struct {
	View        string    `json:"view"`
	Format      string    `json:"format"`
	ObjectName  string    `json:"object_name"`
	Rows        int       `json:"rows"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
