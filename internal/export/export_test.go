package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

func sample() []*patient.Patient {
	return []*patient.Patient{
		{ID: 3, Name: "Sita", Age: 61, Village: "Itakarlapalli"},
		{ID: 2, Name: "Ravi", Age: 0, Village: "Cheepurupalle"},
		{ID: 1, Name: "Asha", Age: 34, Village: "Garbham"},
	}
}

func TestSpreadsheetRoundTrip(t *testing.T) {
	list := sample()
	data, err := Spreadsheet(list)
	require.NoError(t, err)

	rows, err := ReadSpreadsheet(data)
	require.NoError(t, err)
	require.Equal(t, Rows(list), rows)
}

func TestSpreadsheetEmptyList(t *testing.T) {
	data, err := Spreadsheet(nil)
	require.NoError(t, err)
	rows, err := ReadSpreadsheet(data)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestPDFRowsInListOrder(t *testing.T) {
	data, err := renderPDF(sample(), false)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	body := string(data)
	pos := 0
	for _, cell := range []string{"(Name)", "(Age)", "(Village)", "(Sita)", "(61)", "(Itakarlapalli)", "(Ravi)", "(0)", "(Asha)", "(34)", "(Garbham)"} {
		i := strings.Index(body[pos:], cell)
		require.GreaterOrEqual(t, i, 0, "cell %s missing or out of order", cell)
		pos += i + len(cell)
	}
}

func TestPDFCompressed(t *testing.T) {
	data, err := Render(FormatPDF, sample())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "Itakarlapalli_Data.xlsx", f.FileName())

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "Itakarlapalli_Data.pdf", f.FileName())
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

type memArchive struct{ names []string }

func (m *memArchive) Archive(_ context.Context, name string, data []byte, _ string) (string, error) {
	m.names = append(m.names, name)
	return "exports/" + name, nil
}

func TestWriteAndArchive(t *testing.T) {
	var buf bytes.Buffer
	arc := &memArchive{}
	res, err := Write(context.Background(), &buf, FormatXLSX, sample(), arc)
	require.NoError(t, err)
	require.Equal(t, "exports/Itakarlapalli_Data.xlsx", res.ArchiveKey)
	require.Equal(t, []string{"Itakarlapalli_Data.xlsx"}, arc.names)
	require.Equal(t, buf.Len(), res.Size)

	rows, err := ReadSpreadsheet(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 3)
}
