// Package export renders the patient list as downloadable documents. It works
// on a list the caller already holds and never talks to the Record Store.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

// Format is an export document type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const baseName = "Itakarlapalli_Data"

// Header is the visible column set, in order, for both documents.
var Header = []string{"Name", "Age", "Village"}

// ParseFormat accepts "xlsx"/"excel" and "pdf" (any case).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FileName is the download name used by the front end.
func (f Format) FileName() string { return baseName + "." + string(f) }

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Row is one visible table row.
type Row struct {
	Name    string
	Age     string
	Village string
}

// Rows projects records onto the visible columns, keeping list order.
func Rows(list []*patient.Patient) []Row {
	out := make([]Row, 0, len(list))
	for _, p := range list {
		out = append(out, Row{Name: p.Name, Age: strconv.Itoa(p.Age), Village: p.Village})
	}
	return out
}

// Render produces the document for f.
func Render(f Format, list []*patient.Patient) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return Spreadsheet(list)
	case FormatPDF:
		return PDF(list)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Archiver stores a rendered document somewhere durable and returns its key.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Result describes a written export.
type Result struct {
	Format     Format
	Size       int
	ArchiveKey string
}

// Write renders list to w and, when arc is non-nil, archives a copy.
func Write(ctx context.Context, w io.Writer, f Format, list []*patient.Patient, arc Archiver) (Result, error) {
	data, err := Render(f, list)
	if err != nil {
		return Result{}, err
	}
	n, err := w.Write(data)
	if err != nil {
		return Result{}, err
	}
	res := Result{Format: f, Size: n}
	if arc != nil {
		key, err := arc.Archive(ctx, f.FileName(), data, f.ContentType())
		if err != nil {
			return res, fmt.Errorf("archive export: %w", err)
		}
		res.ArchiveKey = key
	}
	return res, nil
}
