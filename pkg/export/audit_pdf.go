package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

// AuditPDFExporter renders an audit trail into a tabular PDF.
type AuditPDFExporter struct{}

// NewAuditPDFExporter constructs an audit trail exporter.
func NewAuditPDFExporter() *AuditPDFExporter {
	return &AuditPDFExporter{}
}

var auditHeaders = []string{"Timestamp", "Actor", "Action", "Severity", "Description"}

// Render creates a PDF listing the records in order, oldest first.
func (e *AuditPDFExporter) Render(records []models.AuditRecord, title string) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("audit trail is empty")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	widths := []float64{45, 55, 45, 25, 107}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range auditHeaders {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, rec := range records {
		actor := ""
		if rec.ActorID != nil {
			actor = *rec.ActorID
		}
		cells := []string{
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			actor,
			rec.Action,
			string(rec.Severity),
			truncate(rec.Description, 80),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render audit pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
