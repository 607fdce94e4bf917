// Package socioeconomic ingests the four published country rankings:
// economic freedom, corruption perception, human development and world
// competitiveness. Each arrives in its own layout but reduces to one
// reconciled (country, rank) list.
package socioeconomic

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"tradepulse/internal/bridge"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/xlsx"
	"tradepulse/pkg/contracts/domain"
)

// Source column names as published by each index provider.
const (
	efiColYear    = "Index Year"
	efiColCountry = "Country"
	efiColScore   = "Overall Score"

	cpiColCountry = "Country / Territory"
	cpiColISO3    = "ISO3"
	cpiColRegion  = "Region"
	cpiColRank    = "Rank"

	hdiColRank    = "HDI rank"
	hdiColCountry = "Country"

	wciColRank    = "WCR"
	wciColCountry = "Country"
	wciColISO     = "국가코드"
)

// EconomicFreedomSkipRows is the preamble length of the economic
// freedom CSV export.
const EconomicFreedomSkipRows = 4

var (
	efiHeaderSpec = []string{efiColYear, efiColCountry}
	cpiHeaderSpec = []string{cpiColCountry, cpiColISO3, cpiColRegion}
	hdiHeaderSpec = []string{hdiColRank, hdiColCountry}
	wciHeaderSpec = []string{wciColRank, wciColCountry, wciColISO}
)

var yearRe = regexp.MustCompile(`\d{4}`)

// Extractor turns index source files into reconciled score lists.
type Extractor struct {
	mapper *bridge.Mapper
	logger *slog.Logger
}

// NewExtractor creates a socioeconomic index extractor.
func NewExtractor(mapper *bridge.Mapper, logger *slog.Logger) *Extractor {
	return &Extractor{
		mapper: mapper,
		logger: logger.With(slog.String("component", "socioeconomic")),
	}
}

// ExtractFile reads the source file at path for the given index. The
// economic freedom index ships as CSV, the other three as workbooks.
func (e *Extractor) ExtractFile(path string, kind domain.IndexKind) ([]domain.IndexScore, error) {
	if kind == domain.IndexEconomicFreedom {
		table, err := xlsx.ReadCSV(path, EconomicFreedomSkipRows)
		if err != nil {
			return nil, err
		}
		return e.Extract(table, kind)
	}

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
	return e.Extract(table, kind)
}

// Extract processes one index table.
func (e *Extractor) Extract(t *xlsx.Table, kind domain.IndexKind) ([]domain.IndexScore, error) {
	var (
		scores []domain.IndexScore
		err    error
	)
	switch kind {
	case domain.IndexEconomicFreedom:
		scores, err = e.extractEconomicFreedom(t)
	case domain.IndexCorruptionPerception:
		scores, err = e.extractRanked(t, kind, cpiHeaderSpec, cpiColCountry, cpiColRank)
	case domain.IndexHumanDevelopment:
		scores, err = e.extractRanked(t, kind, hdiHeaderSpec, hdiColCountry, hdiColRank)
	case domain.IndexWorldCompetitiveness:
		scores, err = e.extractWorldCompetitiveness(t)
	default:
		return nil, apperrors.NewProcessing(apperrors.CodeInvalidParam, "unknown index kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Rank < scores[j].Rank })

	e.logger.Info("extracted index scores",
		slog.String("index", string(kind)),
		slog.Int("rows", len(scores)))
	return scores, nil
}

// extractEconomicFreedom ranks countries by overall score. The source
// publishes scores only, so ranks are assigned highest score first,
// with ties sharing the smallest rank of the group.
func (e *Extractor) extractEconomicFreedom(t *xlsx.Table) ([]domain.IndexScore, error) {
	headerIdx, ok := xlsx.LocateHeader(t, efiHeaderSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"economic freedom header not found")
	}

	colIdx, err := requireColumns(t.HeaderColumns(headerIdx),
		efiColYear, efiColCountry, efiColScore)
	if err != nil {
		return nil, err
	}

	var dropped int
	var scores []domain.IndexScore
	for _, row := range t.Body(headerIdx) {
		score, ok := row.Float(colIdx[efiColScore])
		if !ok {
			continue
		}
		code, name, ok := e.mapper.Resolve(row.Get(colIdx[efiColCountry]))
		if !ok {
			dropped++
			continue
		}
		scores = append(scores, domain.IndexScore{
			Index:       domain.IndexEconomicFreedom,
			Year:        yearRe.FindString(row.Get(colIdx[efiColYear])),
			CountryCode: code,
			CountryName: name,
			Score:       score,
		})
	}

	assignScoreRanks(scores)

	if dropped > 0 {
		e.logger.Warn("dropped unmapped countries",
			slog.String("index", string(domain.IndexEconomicFreedom)),
			slog.Int("dropped", dropped))
	}
	return scores, nil
}

// extractRanked handles the indexes that publish an explicit rank
// column and identify countries by their English names.
func (e *Extractor) extractRanked(t *xlsx.Table, kind domain.IndexKind, headerSpec []string, countryCol, rankCol string) ([]domain.IndexScore, error) {
	headerIdx, ok := xlsx.LocateHeader(t, headerSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"%s header not found", kind)
	}

	colIdx, err := requireColumns(t.HeaderColumns(headerIdx), countryCol, rankCol)
	if err != nil {
		return nil, err
	}

	var dropped int
	var scores []domain.IndexScore
	for _, row := range t.Body(headerIdx) {
		rank, ok := rowRank(row, colIdx[rankCol])
		if !ok {
			continue
		}
		code, name, ok := e.mapper.Resolve(row.Get(colIdx[countryCol]))
		if !ok {
			dropped++
			continue
		}
		scores = append(scores, domain.IndexScore{
			Index:       kind,
			CountryCode: code,
			CountryName: name,
			Rank:        rank,
		})
	}

	if dropped > 0 {
		e.logger.Warn("dropped unmapped countries",
			slog.String("index", string(kind)),
			slog.Int("dropped", dropped))
	}
	return scores, nil
}

// extractWorldCompetitiveness identifies countries by ISO code rather
// than name, so only the second reconciliation hop applies.
func (e *Extractor) extractWorldCompetitiveness(t *xlsx.Table) ([]domain.IndexScore, error) {
	headerIdx, ok := xlsx.LocateHeader(t, wciHeaderSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"world competitiveness header not found")
	}

	colIdx, err := requireColumns(t.HeaderColumns(headerIdx), wciColRank, wciColISO)
	if err != nil {
		return nil, err
	}

	var dropped int
	var scores []domain.IndexScore
	for _, row := range t.Body(headerIdx) {
		rank, ok := rowRank(row, colIdx[wciColRank])
		if !ok {
			continue
		}
		code := strings.ToUpper(row.Get(colIdx[wciColISO]))
		name, ok := e.mapper.NameForCode(code)
		if !ok {
			dropped++
			continue
		}
		scores = append(scores, domain.IndexScore{
			Index:       domain.IndexWorldCompetitiveness,
			CountryCode: code,
			CountryName: name,
			Rank:        rank,
		})
	}

	if dropped > 0 {
		e.logger.Warn("dropped unmapped countries",
			slog.String("index", string(domain.IndexWorldCompetitiveness)),
			slog.Int("dropped", dropped))
	}
	return scores, nil
}

// assignScoreRanks fills in Rank by descending score. Equal scores
// share the smallest rank of their group.
func assignScoreRanks(scores []domain.IndexScore) {
	for i := range scores {
		rank := 1
		for j := range scores {
			if scores[j].Score > scores[i].Score {
				rank++
			}
		}
		scores[i].Rank = rank
	}
}

// rowRank parses an integer rank from column i. Blank and non-numeric
// cells report false.
func rowRank(row xlsx.Row, i int) (int, bool) {
	f, ok := row.Float(i)
	if !ok {
		return 0, false
	}
	rank := int(f)
	if float64(rank) != f || rank < 1 {
		return 0, false
	}
	return rank, true
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
