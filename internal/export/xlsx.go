package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

// SheetName is the worksheet holding the table.
const SheetName = "Patient Data"

// Spreadsheet renders list as an .xlsx workbook with one header row.
func Spreadsheet(list []*patient.Patient) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.Name, p.Age, p.Village}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "C", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadSpreadsheet returns the data rows of a workbook produced by Spreadsheet.
func ReadSpreadsheet(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", SheetName)
	}
	out := make([]Row, 0, len(rows)-1)
	for _, r := range rows[1:] {
		for len(r) < 3 {
			r = append(r, "")
		}
		out = append(out, Row{Name: r[0], Age: r[1], Village: r[2]})
	}
	return out, nil
}
