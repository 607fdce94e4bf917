package customs

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

// Item workbook column names.
const (
	colFlag     = "수출입구분"
	colCategory = "성질명"
	colWeight   = "중량"
	colAmount   = "금액"
)

var itemHeaderSpec = []string{colPeriod, colCategory}

// Category prefixes: major sections are numbered, subsections are
// lettered with Korean ordinals.
var (
	majorCategoryRe = regexp.MustCompile(`^(1|2)\.\s*`)
	subCategoryRe   = regexp.MustCompile(`^[가-하]\.\s*`)
)

// residual category relabels, applied before prefixes are stripped so
// the ambiguous "기 타" rows keep their section meaning.
var (
	exportRelabels = map[string]string{
		"카. 기 타": "카. 경공업품(기타)",
		"바. 기 타": "바. 중화학 공업품(기타)",
	}
	importRelabels = map[string]string{
		"라. 기 타": "라. 자본재(기타)",
		"자. 기 타": "자. 원자재(기타)",
	}
)

// ItemExtractor turns per-item customs workbooks into reconciled rows
// for one trade direction.
type ItemExtractor struct {
	mapper *bridge.Mapper
	logger *slog.Logger
}

// NewItemExtractor creates a customs item extractor.
func NewItemExtractor(mapper *bridge.Mapper, logger *slog.Logger) *ItemExtractor {
	return &ItemExtractor{
		mapper: mapper,
		logger: logger.With(slog.String("component", "customs_item")),
	}
}

// ExtractFile reads the first sheet of the workbook at path for the
// given direction.
func (e *ItemExtractor) ExtractFile(path string, direction domain.TradeDirection) ([]domain.CustomsItemRow, error) {
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
	return e.Extract(table, direction)
}

// Extract processes one item table for the given direction.
func (e *ItemExtractor) Extract(t *xlsx.Table, direction domain.TradeDirection) ([]domain.CustomsItemRow, error) {
	flag := domain.CustomsFlagExport
	relabels := exportRelabels
	if direction == domain.DirectionImport {
		flag = domain.CustomsFlagImport
		relabels = importRelabels
	}

	headerIdx, ok := xlsx.LocateHeader(t, itemHeaderSpec)
	if !ok {
		return nil, apperrors.NewProcessing(apperrors.CodeHeaderNotFound,
			"customs item header not found")
	}

	columns := t.HeaderColumns(headerIdx)
	colIdx, err := requireColumns(columns, colPeriod, colCategory, colCountry, colAmount)
	if err != nil {
		return nil, err
	}
	body := t.Body(headerIdx)

	if err := e.validateFlag(columns, colIdx, body, flag); err != nil {
		return nil, err
	}

	var rows []domain.CustomsItemRow
	var dropped int
	for _, row := range body {
		if flagIdx, hasFlag := colIdx[colFlag]; hasFlag {
			if !strings.Contains(row.Get(flagIdx), flag) {
				continue
			}
		}

		category, ok := normalizeCategory(row.Get(colIdx[colCategory]), direction, relabels)
		if !ok {
			continue
		}

		year := yearRe.FindString(row.Get(colIdx[colPeriod]))
		if year == "" {
			continue
		}

		code, name, resolved := e.mapper.ResolveKorean(row.Get(colIdx[colCountry]))
		if !resolved {
			dropped++
			continue
		}

		amount, _ := row.Float(colIdx[colAmount])
		var weight float64
		if wIdx, hasWeight := colIdx[colWeight]; hasWeight {
			weight, _ = row.Float(wIdx)
		}

		rows = append(rows, domain.CustomsItemRow{
			Year:       year,
			Direction:  direction,
			NationCode: code,
			NationName: name,
			Category:   category,
			Weight:     weight,
			Amount:     amount,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Amount > rows[j].Amount
	})

	e.logger.Info("extracted customs item rows",
		slog.String("direction", string(direction)),
		slog.Int("rows", len(rows)),
		slog.Int("dropped", dropped))
	return rows, nil
}

// validateFlag checks that the workbook actually carries data for the
// requested direction. Files without the direction column skip the
// check.
func (e *ItemExtractor) validateFlag(columns []string, colIdx map[string]int, body []xlsx.Row, flag string) error {
	flagIdx, ok := colIdx[colFlag]
	if !ok {
		e.logger.Warn("direction column missing, skipping file content check")
		return nil
	}

	for _, row := range body {
		if strings.Contains(row.Get(flagIdx), flag) {
			return nil
		}
	}
	return apperrors.NewProcessing(apperrors.CodeDataValidation,
		"file does not contain %q data", flag)
}

// normalizeCategory keeps the category rows the direction uses, applies
// the residual relabels, and strips the section prefixes.
func normalizeCategory(category string, direction domain.TradeDirection, relabels map[string]string) (string, bool) {
	isMajor := majorCategoryRe.MatchString(category)
	isSub := subCategoryRe.MatchString(category)

	switch direction {
	case domain.DirectionExport:
		if !isMajor && !isSub {
			return "", false
		}
	case domain.DirectionImport:
		if !isSub {
			return "", false
		}
	}

	for prefix, replacement := range relabels {
		if strings.HasPrefix(strings.TrimSpace(category), prefix) {
			category = replacement
			break
		}
	}

	category = majorCategoryRe.ReplaceAllString(category, "")
	category = subCategoryRe.ReplaceAllString(category, "")
	return strings.TrimSpace(category), true
}
