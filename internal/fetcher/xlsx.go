package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/kesiliance/screening-cli/internal/model"
)

// SanctionRowsXLSX parses a sanction list from the first sheet of an XLSX
// file. The first row is the header and follows the same rules as
// SanctionRows.
func SanctionRowsXLSX(path string) ([]model.Sanction, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("fetcher: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("fetcher: empty xlsx sheet")
	}

	cols := headerColumns(rowToStrings(sheet.Rows[0]))
	if _, ok := cols["name"]; !ok {
		return nil, eris.New(`fetcher: xlsx must contain a "name" column`)
	}

	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, rowToStrings(row))
	}
	return sanctionsFromRows(cols, rows), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
