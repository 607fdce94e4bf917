// Package customs ingests the customs office's annual trade workbooks:
// country totals and per-item traffic, both keyed by Korean country
// names that are reconciled to ISO codes.
package customs

import (
	"log/slog"
	"regexp"
	"sort"

	"tradepulse/internal/bridge"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/xlsx"
	"tradepulse/pkg/contracts/domain"
)

// Source column names as published by the customs office.
const (
	colPeriod       = "기간"
	colCountry      = "국가"
	colExportAmount = "수출 금액"
	colImportAmount = "수입 금액"
	colTradeBalance = "무역수지"

	// totalRowLabel marks the nationwide summary row, which is dropped.
	totalRowLabel = "총계"
)

var countryHeaderSpec = []string{colPeriod, colCountry}

var yearRe = regexp.MustCompile(`\d{4}`)

// CountryExtractor turns country-totals workbooks into reconciled rows.
type CountryExtractor struct {
	mapper *bridge.Mapper
	logger *slog.Logger
}

// NewCountryExtractor creates a customs country extractor.
func NewCountryExtractor(mapper *bridge.Mapper, logger *slog.Logger) *CountryExtractor {
	return &CountryExtractor{
		mapper: mapper,
		logger: logger.With(slog.String("component", "customs_country")),
	}
}

// ExtractFile reads the first sheet of the workbook at path.
func (e *CountryExtractor) ExtractFile(path string) ([]domain.CustomsCountryRow, error) {
	wb, err := xlsx.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, apperrors.NewProcessing(apperrors.CodeFileRead, "workbook has no sheets")
	}
	table, err := wb.Table(sheets[0])
	if err != nil {
		return nil, err
	}
	return e.Extract(table)
}

// Extract processes one country-totals table.
func (e *CountryExtractor) Extract(t *xlsx.Table) ([]domain.CustomsCountryRow, error) {
	headerIdx, ok := xlsx.LocateHeader(t, countryHeaderSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"customs country header not found")
	}

	colIdx, err := requireColumns(t.HeaderColumns(headerIdx),
		colPeriod, colCountry, colExportAmount, colImportAmount, colTradeBalance)
	if err != nil {
		return nil, err
	}

	var rows []domain.CustomsCountryRow
	var dropped int
	for _, row := range t.Body(headerIdx) {
		if row.Get(0) == totalRowLabel {
			continue
		}

		year := yearRe.FindString(row.Get(colIdx[colPeriod]))
		if year == "" {
			continue
		}

		code, name, ok := e.mapper.ResolveKorean(row.Get(colIdx[colCountry]))
		if !ok {
			dropped++
			continue
		}

		exportAmt, _ := row.Float(colIdx[colExportAmount])
		importAmt, _ := row.Float(colIdx[colImportAmount])
		tradeAmt, _ := row.Float(colIdx[colTradeBalance])

		rows = append(rows, domain.CustomsCountryRow{
			Year:       year,
			NationCode: code,
			NationName: name,
			ExportAmt:  exportAmt,
			ImportAmt:  importAmt,
			TradeAmt:   tradeAmt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].NationName < rows[j].NationName
	})

	e.logger.Info("extracted customs country rows",
		slog.Int("rows", len(rows)),
		slog.Int("dropped", dropped))
	return rows, nil
}

// requireColumns maps the named columns to their indices, failing with
// a validation error when any is missing.
func requireColumns(columns []string, names ...string) (map[string]int, error) {
	colIdx := make(map[string]int, len(columns))
	for i, name := range columns {
		colIdx[name] = i
	}
	for _, name := range names {
		if _, ok := colIdx[name]; !ok {
			return nil, apperrors.NewProcessing(apperrors.CodeDataValidation,
				"required column %q not found", name)
		}
	}
	return colIdx, nil
}
