// Package tradepartner ingests trade partner workbooks: XPM sheets
// rank export partners, MPM sheets import partners, and the two sides
// are paired into one table per reporting country.
package tradepartner

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"tradepulse/internal/bridge"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/xlsx"
	"tradepulse/pkg/contracts/domain"
)

var headerSpec = []string{"Geography", "Code"}

// definitionColumn carries the series label the partner name is parsed from.
const definitionColumn = "Definition"

const (
	exportSheetPrefix = "XPM"
	importSheetPrefix = "MPM"
)

var (
	exportSeriesRe = regexp.MustCompile(`(?i)exports (?:from|to) (?:the\s+)?([^,]+?)(?:,)?\s*(?:as a percentage|as percentage)`)
	importSeriesRe = regexp.MustCompile(`(?i)imports (?:from|to) (?:the\s+)?([^,]+?)(?:,)?\s*(?:as a percentage|as percentage)`)
)

// Extractor turns trade partner workbooks into paired country tables.
type Extractor struct {
	mapper *bridge.Mapper
	logger *slog.Logger
}

// NewExtractor creates a trade partner extractor.
func NewExtractor(mapper *bridge.Mapper, logger *slog.Logger) *Extractor {
	return &Extractor{
		mapper: mapper,
		logger: logger.With(slog.String("component", "trade_partner")),
	}
}

// ExtractFile reads all partner sheets of the workbook at path and
// aggregates them into per-country profiles.
func (e *Extractor) ExtractFile(path string) ([]domain.CountryTradeProfile, error) {
	wb, err := xlsx.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var tables []*xlsx.Table
	for _, sheet := range wb.SheetNames() {
		if !partnerSheet(sheet) {
			continue
		}
		table, err := wb.Table(sheet)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return e.ExtractTables(tables)
}

// ExtractTables processes the given partner sheets in order.
func (e *Extractor) ExtractTables(tables []*xlsx.Table) ([]domain.CountryTradeProfile, error) {
	var relations []domain.TradeRelation
	for _, t := range tables {
		direction, ok := sheetDirection(t.Name)
		if !ok {
			continue
		}
		sheetRelations, err := e.extractSheet(t, direction)
		if err != nil {
			return nil, err
		}
		relations = append(relations, sheetRelations...)
	}
	return e.Aggregate(relations), nil
}

// extractSheet reads one partner sheet. Each row names a reporting
// country; the partner is parsed out of the row's series label.
func (e *Extractor) extractSheet(t *xlsx.Table, direction domain.TradeDirection) ([]domain.TradeRelation, error) {
	headerIdx, ok := xlsx.LocateHeader(t, headerSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"partner header not found in sheet %q", t.Name)
	}

	columns := t.HeaderColumns(headerIdx)
	yearCol, year := rateColumn(columns)
	if yearCol < 0 {
		return nil, apperrors.NewProcessing(apperrors.CodeDataProcessing,
			"no reference year column in sheet %q", t.Name)
	}
	defCol := columnIndex(columns, definitionColumn)
	if defCol < 0 {
		return nil, apperrors.NewProcessing(apperrors.CodeDataProcessing,
			"no %s column in sheet %q", definitionColumn, t.Name)
	}

	re := exportSeriesRe
	if direction == domain.DirectionImport {
		re = importSeriesRe
	}

	var relations []domain.TradeRelation
	for _, row := range t.Body(headerIdx) {
		country := row.Get(0)
		if country == "" {
			continue
		}

		rate, ok := row.Float(yearCol)
		if !ok {
			rate = 0
		}

		relations = append(relations, domain.TradeRelation{
			Country:   country,
			Partner:   partnerFromDefinition(row.Get(defCol), re),
			Direction: direction,
			Rate:      rate,
			Year:      year,
		})
	}

	e.logger.Debug("extracted partner sheet",
		slog.String("sheet", t.Name),
		slog.String("year", year),
		slog.Int("rows", len(relations)))
	return relations, nil
}

// Aggregate pairs each country's export and import partner lists into
// one table, preserving the order partners were seen in, and closes
// each direction with a residual share row when the listed shares do
// not reach 100.
func (e *Extractor) Aggregate(relations []domain.TradeRelation) []domain.CountryTradeProfile {
	type sides struct {
		exports, imports []domain.TradeRelation
		year             string
	}

	byCountry := make(map[string]*sides)
	var order []string
	for _, rel := range relations {
		if rel.Partner == "" || rel.Rate <= 0 {
			continue
		}
		s, seen := byCountry[rel.Country]
		if !seen {
			s = &sides{}
			byCountry[rel.Country] = s
			order = append(order, rel.Country)
		}
		if rel.Year != "" {
			s.year = rel.Year
		}
		if rel.Direction == domain.DirectionExport {
			s.exports = append(s.exports, rel)
		} else {
			s.imports = append(s.imports, rel)
		}
	}

	var profiles []domain.CountryTradeProfile
	for _, country := range order {
		s := byCountry[country]

		code, display, ok := e.mapper.Resolve(country)
		if !ok {
			e.logger.Warn("dropping unmapped reporting country",
				slog.String("country", country))
			continue
		}

		profiles = append(profiles, domain.CountryTradeProfile{
			CountryCode: code,
			CountryName: display,
			Year:        s.year,
			Rows:        e.pairRows(s.exports, s.imports),
		})
	}
	return profiles
}

// pairRows zips the two partner lists row for row, padding the shorter
// side with blanks, then appends the shared residual row.
func (e *Extractor) pairRows(exports, imports []domain.TradeRelation) []domain.TradePairRow {
	n := len(exports)
	if len(imports) > n {
		n = len(imports)
	}

	var exportTotal, importTotal float64
	rows := make([]domain.TradePairRow, 0, n+1)
	for i := 0; i < n; i++ {
		var row domain.TradePairRow
		row.ExportRate = formatRate(0)
		row.ImportRate = formatRate(0)
		if i < len(exports) {
			_, row.ExportPartner = e.mapper.ResolveLoose(exports[i].Partner)
			row.ExportRate = formatRate(exports[i].Rate)
			exportTotal += exports[i].Rate
		}
		if i < len(imports) {
			_, row.ImportPartner = e.mapper.ResolveLoose(imports[i].Partner)
			row.ImportRate = formatRate(imports[i].Rate)
			importTotal += imports[i].Rate
		}
		rows = append(rows, row)
	}

	residual := domain.TradePairRow{ExportRate: formatRate(0), ImportRate: formatRate(0)}
	addResidual := false
	if len(exports) > 0 && exportTotal < 100 {
		residual.ExportPartner = residualLabel
		residual.ExportRate = formatRate(100 - exportTotal)
		addResidual = true
	}
	if len(imports) > 0 && importTotal < 100 {
		residual.ImportPartner = residualLabel
		residual.ImportRate = formatRate(100 - importTotal)
		addResidual = true
	}
	if addResidual {
		rows = append(rows, residual)
	}
	return rows
}

// residualLabel names the remainder-of-trade row.
const residualLabel = "other"

func formatRate(rate float64) string {
	if rate == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.3f%%", rate)
}

// partnerFromDefinition extracts the partner name from a definition
// label such as "Exports to India, as a percentage of total exports".
func partnerFromDefinition(definition string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(definition); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return ""
}

// columnIndex returns the position of the named header column, or -1.
func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}

// rateColumn finds the first header column named by a four-digit year.
func rateColumn(columns []string) (int, string) {
	for i, name := range columns {
		if len(name) == 4 && isDigits(name) {
			return i, name
		}
	}
	return -1, ""
}

func partnerSheet(name string) bool {
	_, ok := sheetDirection(name)
	return ok
}

func sheetDirection(name string) (domain.TradeDirection, bool) {
	switch {
	case strings.HasPrefix(name, exportSheetPrefix):
		return domain.DirectionExport, true
	case strings.HasPrefix(name, importSheetPrefix):
		return domain.DirectionImport, true
	}
	return "", false
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
