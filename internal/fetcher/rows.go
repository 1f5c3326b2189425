package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kesiliance/screening-cli/internal/model"
)

// columns maps lower-cased header names to their positions.
type columns map[string]int

func headerColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readRows(r io.Reader) (columns, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("fetcher: empty csv")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "fetcher: read csv header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "fetcher: read csv row")
		}
		rows = append(rows, record)
	}
	return headerColumns(header), rows, nil
}

// SanctionRows parses a sanction list in CSV form. The header must contain a
// "name" column (matched case-insensitively); "country" and "source" are
// optional. Rows with a blank name are skipped.
func SanctionRows(r io.Reader) ([]model.Sanction, error) {
	cols, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New(`fetcher: csv must contain a "name" column`)
	}
	return sanctionsFromRows(cols, rows), nil
}

// EntityRows parses an entity import CSV with the same header rules as
// SanctionRows minus the "source" column.
func EntityRows(r io.Reader) ([]model.Entity, error) {
	cols, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New(`fetcher: csv must contain a "name" column`)
	}

	var out []model.Entity
	for _, row := range rows {
		name := cols.get(row, "name")
		if name == "" {
			continue
		}
		out = append(out, model.Entity{
			Name:    name,
			Country: cols.get(row, "country"),
		})
	}
	return out, nil
}

func sanctionsFromRows(cols columns, rows [][]string) []model.Sanction {
	var out []model.Sanction
	for _, row := range rows {
		name := cols.get(row, "name")
		if name == "" {
			continue
		}
		out = append(out, model.Sanction{
			Name:    name,
			Country: cols.get(row, "country"),
			Source:  cols.get(row, "source"),
		})
	}
	return out
}
