package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

var columnWidths = []float64{80, 25, 75}

// PDF renders list as a single table with a Name/Age/Village head row.
func PDF(list []*patient.Patient) ([]byte, error) {
	return renderPDF(list, true)
}

func renderPDF(list []*patient.Patient, compress bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle("Itakarlapalli Sub Centre - Patient Data", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	head := func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(41, 128, 185)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range Header {
			pdf.CellFormat(columnWidths[i], 8, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetHeaderFunc(head)
	pdf.AddPage()
	for _, r := range Rows(list) {
		pdf.CellFormat(columnWidths[0], 7, tr(r.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[1], 7, r.Age, "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[2], 7, tr(r.Village), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
