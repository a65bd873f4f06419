package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PassDocument holds the fields printed on a gate-pass permit.
type PassDocument struct {
	Title       string
	ReferenceID string
	Fields      []PassField
	Footer      string
}

// PassField is one labelled line on the permit.
type PassField struct {
	Label string
	Value string
}

// PassPDF renders a single-page gate-pass permit.
func PassPDF(doc PassDocument) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf requires a title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")

	if doc.ReferenceID != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, "Ref: "+doc.ReferenceID, "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	for _, field := range doc.Fields {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, field.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 8, field.Value, "", "L", false)
	}

	if doc.Footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 6, doc.Footer, "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
