// Package indicator ingests country indicator workbooks: one sheet per
// country, one row per published series, yearly observations classified
// by provenance.
package indicator

import (
	"log/slog"
	"strconv"
	"strings"

	"tradepulse/internal/bridge"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/xlsx"
	"tradepulse/pkg/contracts/domain"
)

// headerSpec identifies the series header row inside a country sheet.
var headerSpec = []string{"Series", "Code"}

// metadata column names carried onto the record.
const (
	colSeries     = "Series"
	colCode       = "Code"
	colCurrency   = "Currency"
	colUnits      = "Units"
	colSource     = "Source"
	colDefinition = "Definition"
	colNote       = "Note"
	colPublished  = "Published"
)

// forecastSlotLimit is the last two-digit year slot padded with
// forecast placeholders.
const forecastSlotLimit = 51

// Extractor turns indicator workbooks into reconciled records.
type Extractor struct {
	mapper *bridge.Mapper
	logger *slog.Logger
}

// NewExtractor creates an indicator extractor.
func NewExtractor(mapper *bridge.Mapper, logger *slog.Logger) *Extractor {
	return &Extractor{
		mapper: mapper,
		logger: logger.With(slog.String("component", "indicator")),
	}
}

// ExtractFile reads every country sheet of the workbook at path.
func (e *Extractor) ExtractFile(path string) ([]domain.IndicatorRecord, error) {
	wb, err := xlsx.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var records []domain.IndicatorRecord
	for _, sheet := range wb.SheetNames() {
		table, err := wb.StyledTable(sheet)
		if err != nil {
			return nil, err
		}
		sheetRecords, err := e.ExtractSheet(table)
		if err != nil {
			return nil, err
		}
		records = append(records, sheetRecords...)
	}
	padRecords(records)
	return records, nil
}

// padRecords aligns every record on the same year columns. Sheets may
// publish different year ranges; years a record lacks fill as missing,
// then forecast slots extend from the maximum year seen in any sheet.
func padRecords(records []domain.IndicatorRecord) {
	yearSet := make(map[string]struct{})
	for _, rec := range records {
		for year := range rec.Values {
			yearSet[year] = struct{}{}
		}
	}
	years := make([]string, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	maxYear := maxYearOf(years)

	for _, rec := range records {
		for year := range yearSet {
			if _, ok := rec.Values[year]; !ok {
				rec.Values[year] = domain.Missing()
			}
		}
		padForecast(rec.Values, maxYear)
	}
}

// ExtractSheet processes one country sheet. The sheet name is the
// country code; sheets whose code has no display name are skipped.
func (e *Extractor) ExtractSheet(t *xlsx.Table) ([]domain.IndicatorRecord, error) {
	countryCode := strings.ToUpper(strings.TrimSpace(t.Name))
	countryName, ok := e.mapper.NameForCode(countryCode)
	if !ok {
		e.logger.Warn("skipping sheet with unmapped country code",
			slog.String("sheet", t.Name))
		return nil, nil
	}

	headerIdx, ok := xlsx.LocateHeader(t, headerSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"series header not found in sheet %q", t.Name)
	}

	columns := t.HeaderColumns(headerIdx)
	years := yearColumns(columns)
	colIdx := make(map[string]int, len(columns))
	for i, name := range columns {
		colIdx[name] = i
	}

	// Last-seen occurrence of a series code wins.
	byCode := make(map[string]domain.IndicatorRecord)
	for _, row := range t.Body(headerIdx) {
		code := row.Get(colIdx[colCode])
		if code == "" || !domain.InCatalog(code) {
			continue
		}
		byCode[code] = e.recordFromRow(row, colIdx, years, countryCode, countryName)
	}

	records := make([]domain.IndicatorRecord, 0, len(domain.SeriesCatalog))
	for _, entry := range domain.SeriesCatalog {
		rec, found := byCode[entry.Code]
		if !found {
			rec = synthesizeRecord(countryCode, countryName, entry, years)
		}
		records = append(records, rec)
	}

	e.logger.Info("extracted country sheet",
		slog.String("country", countryCode),
		slog.Int("series", len(byCode)),
		slog.Int("synthesized", len(records)-len(byCode)))
	return records, nil
}

func (e *Extractor) recordFromRow(row xlsx.Row, colIdx map[string]int, years []string, countryCode, countryName string) domain.IndicatorRecord {
	get := func(name string) string {
		i, ok := colIdx[name]
		if !ok {
			return ""
		}
		return row.Get(i)
	}

	rec := domain.IndicatorRecord{
		CountryCode: countryCode,
		CountryName: countryName,
		SeriesCode:  get(colCode),
		SeriesName:  get(colSeries),
		Currency:    get(colCurrency),
		Units:       get(colUnits),
		Source:      get(colSource),
		Definition:  get(colDefinition),
		Note:        get(colNote),
		Published:   get(colPublished),
		Values:      make(map[string]domain.ClassifiedValue, len(years)),
	}

	for _, year := range years {
		i := colIdx[year]
		v, ok := row.Float(i)
		if !ok {
			rec.Values[year] = domain.Missing()
			continue
		}
		if i < len(row) && row[i].Estimated {
			rec.Values[year] = domain.Estimate(v)
		} else {
			rec.Values[year] = domain.Actual(v)
		}
	}
	return rec
}

// synthesizeRecord fills a catalog series the workbook never published.
func synthesizeRecord(countryCode, countryName string, entry domain.SeriesEntry, years []string) domain.IndicatorRecord {
	values := make(map[string]domain.ClassifiedValue, len(years))
	for _, year := range years {
		values[year] = domain.Missing()
	}
	return domain.IndicatorRecord{
		CountryCode: countryCode,
		CountryName: countryName,
		SeriesCode:  entry.Code,
		SeriesName:  entry.Title,
		Values:      values,
		Synthesized: true,
	}
}

// padForecast appends forecast placeholders for the slots after the
// last published year, up to the two-digit slot limit.
func padForecast(values map[string]domain.ClassifiedValue, maxYear int) {
	if maxYear <= 0 {
		return
	}
	end := maxYear - maxYear%100 + forecastSlotLimit
	for y := maxYear + 1; y <= end; y++ {
		values[strconv.Itoa(y)] = domain.Forecast()
	}
}

// yearColumns picks the all-digit column names.
func yearColumns(columns []string) []string {
	var years []string
	for _, name := range columns {
		if isDigits(name) {
			years = append(years, name)
		}
	}
	return years
}

func maxYearOf(years []string) int {
	max := 0
	for _, y := range years {
		if n, err := strconv.Atoi(y); err == nil && n > max {
			max = n
		}
	}
	return max
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
