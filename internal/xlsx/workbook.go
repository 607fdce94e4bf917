package xlsx

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tradepulse/internal/config"
	apperrors "tradepulse/internal/errors"
)

// estimateFontColorSuffix is the RGB tail of the font color the
// publisher applies to estimated figures.
const estimateFontColorSuffix = "00588D"

// Classifier decides whether a cell style marks an estimated figure.
// The publisher's color convention is the default; swap it when a
// source uses a different marker.
type Classifier interface {
	IsEstimate(style *excelize.Style) bool
}

// ColorClassifier matches a font color tail over a solid pattern fill.
type ColorClassifier struct {
	FontColorSuffix string
}

// IsEstimate implements Classifier.
func (c ColorClassifier) IsEstimate(style *excelize.Style) bool {
	if style == nil || style.Font == nil {
		return false
	}
	if style.Fill.Type != "pattern" || style.Fill.Pattern != 1 {
		return false
	}
	return strings.HasSuffix(strings.ToUpper(style.Font.Color), strings.ToUpper(c.FontColorSuffix))
}

// Reader is the raw table source the extractors consume. Workbook is
// the excelize-backed implementation.
type Reader interface {
	SheetNames() []string
	Table(sheet string) (*Table, error)
	Close() error
}

// Workbook wraps an open xlsx file.
type Workbook struct {
	f          *excelize.File
	path       string
	classifier Classifier
}

// OpenWorkbook opens an xlsx file, checking existence and extension
// before handing it to the parser.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeFileNotFound, err, "file not found: %s", path)
	}
	if ext := filepath.Ext(path); !config.ExtensionAllowed(ext) {
		return nil, apperrors.NewProcessing(apperrors.CodeFileExtension, "unsupported file extension %q", ext)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "opening workbook %s", path)
	}
	return &Workbook{
		f:          f,
		path:       path,
		classifier: ColorClassifier{FontColorSuffix: estimateFontColorSuffix},
	}, nil
}

// SetClassifier replaces the estimate classifier.
func (w *Workbook) SetClassifier(c Classifier) {
	w.classifier = c
}

var _ Reader = (*Workbook)(nil)

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the workbook's sheet names in file order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Table reads one sheet by value only.
func (w *Workbook) Table(sheet string) (*Table, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "reading sheet %q", sheet)
	}

	t := &Table{Name: sheet, Rows: make([]Row, len(rows))}
	for i, raw := range rows {
		t.Rows[i] = NewRow(raw...)
	}
	return t, nil
}

// StyledTable reads one sheet and tags cells styled with the estimate
// marker. Style lookups are per cell, so this is reserved for the
// indicator workbooks that need provenance.
func (w *Workbook) StyledTable(sheet string) (*Table, error) {
	t, err := w.Table(sheet)
	if err != nil {
		return nil, err
	}

	for ri := range t.Rows {
		for ci := range t.Rows[ri] {
			if t.Rows[ri][ci].Value == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				continue
			}
			estimated, err := w.cellIsEstimate(sheet, cellName)
			if err != nil {
				return nil, err
			}
			t.Rows[ri][ci].Estimated = estimated
		}
	}
	return t, nil
}

// cellIsEstimate reports whether the cell carries the estimate style.
func (w *Workbook) cellIsEstimate(sheet, cellName string) (bool, error) {
	styleID, err := w.f.GetCellStyle(sheet, cellName)
	if err != nil {
		return false, apperrors.WrapProcessing(apperrors.CodeFileRead, err, "reading style of %s!%s", sheet, cellName)
	}
	style, err := w.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false, nil
	}
	return w.classifier.IsEstimate(style), nil
}
