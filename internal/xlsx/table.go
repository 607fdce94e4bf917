// Package xlsx reads spreadsheet and CSV sources into an in-memory
// table form the ingestion pipelines consume.
package xlsx

import (
	"math"
	"strconv"
	"strings"

	"tradepulse/pkg/contracts/domain"
)

// Cell is a single spreadsheet cell. Estimated is set when the source
// workbook styles the cell with the publisher's estimate marker.
type Cell struct {
	Value     string
	Estimated bool
}

// Row is one spreadsheet row.
type Row []Cell

// Table is a sheet or CSV file read into memory.
type Table struct {
	Name string
	Rows []Row
}

// Get returns the trimmed value of column i, or "" past the row end.
func (r Row) Get(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i].Value)
}

// Empty reports whether column i holds no usable value.
func (r Row) Empty(i int) bool {
	v := r.Get(i)
	return v == "" || v == domain.MissingToken
}

// Float parses column i as a number. Missing markers and NaN report
// false.
func (r Row) Float(i int) (float64, bool) {
	v := r.Get(i)
	if v == "" || v == domain.MissingToken {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// NewRow builds a row from plain string values. Intended for tests and
// CSV sources where no style information exists.
func NewRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Cell{Value: v}
	}
	return row
}

// LocateHeader scans the first HeaderScanLimit rows of t for a row
// whose leading cells match want position for position after trimming.
// It returns the matching row index.
func LocateHeader(t *Table, want []string) (int, bool) {
	limit := len(t.Rows)
	if limit > HeaderScanLimit {
		limit = HeaderScanLimit
	}
	for i := 0; i < limit; i++ {
		if rowMatchesHeader(t.Rows[i], want) {
			return i, true
		}
	}
	return 0, false
}

// HeaderScanLimit bounds how deep LocateHeader looks for a header row.
const HeaderScanLimit = 20

func rowMatchesHeader(row Row, want []string) bool {
	if len(row) < len(want) {
		return false
	}
	for i, w := range want {
		if row.Get(i) != strings.TrimSpace(w) {
			return false
		}
	}
	return true
}

// HeaderColumns returns the column names of the header row at index
// h, stopping at the first empty cell.
func (t *Table) HeaderColumns(h int) []string {
	if h < 0 || h >= len(t.Rows) {
		return nil
	}
	var cols []string
	for i := range t.Rows[h] {
		v := t.Rows[h].Get(i)
		if v == "" {
			break
		}
		cols = append(cols, v)
	}
	return cols
}

// Body returns the rows after header index h.
func (t *Table) Body(h int) []Row {
	if h+1 >= len(t.Rows) {
		return nil
	}
	return t.Rows[h+1:]
}
