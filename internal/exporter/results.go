package exporter

import (
	"fmt"
	"sort"
	"time"

	"tradepulse/pkg/contracts/domain"
)

// ResultExporter writes pipeline outputs as timestamped CSV snapshots
// in the export directory.
type ResultExporter struct {
	csv *CSVWriter
	now func() time.Time
}

// NewResultExporter creates a result exporter rooted at exportDir.
func NewResultExporter(exportDir string) *ResultExporter {
	return &ResultExporter{
		csv: NewCSVWriter(exportDir),
		now: time.Now,
	}
}

// ExportIndicators writes indicator records in long form, one row per
// series value. It returns the written file name.
func (e *ResultExporter) ExportIndicators(records []domain.IndicatorRecord) (string, error) {
	headers := []string{"country_code", "country_name", "series_code", "series_name", "year", "kind", "value"}

	var rows [][]string
	for _, rec := range records {
		years := make([]string, 0, len(rec.Values))
		for year := range rec.Values {
			years = append(years, year)
		}
		sort.Strings(years)
		for _, year := range years {
			v := rec.Values[year]
			value := ""
			if v.HasValue {
				value = formatFloat(v.Value)
			}
			rows = append(rows, []string{
				rec.CountryCode, rec.CountryName, rec.SeriesCode, rec.SeriesName,
				year, string(v.Kind), value,
			})
		}
	}

	name := e.timestamped("indicator_data")
	return name, e.csv.WriteSimpleCSV(name, headers, rows)
}

// ExportTradeProfiles writes the paired partner tables.
func (e *ResultExporter) ExportTradeProfiles(profiles []domain.CountryTradeProfile) (string, error) {
	headers := []string{"country_code", "country_name", "year",
		"export_partner", "export_rate", "import_partner", "import_rate"}

	var rows [][]string
	for _, profile := range profiles {
		for _, row := range profile.Rows {
			rows = append(rows, []string{
				profile.CountryCode, profile.CountryName, profile.Year,
				row.ExportPartner, row.ExportRate, row.ImportPartner, row.ImportRate,
			})
		}
	}

	name := e.timestamped("trade_partner_data")
	return name, e.csv.WriteSimpleCSV(name, headers, rows)
}

// ExportCustomsCountry writes reconciled country trade totals.
func (e *ResultExporter) ExportCustomsCountry(countryRows []domain.CustomsCountryRow) (string, error) {
	headers := []string{"impexp_year", "impexp_nation_code", "impexp_nation_nm",
		"impexp_exp_money", "impexp_imp_money", "impexp_trade_rate_money"}

	rows := make([][]string, 0, len(countryRows))
	for _, row := range countryRows {
		rows = append(rows, []string{
			row.Year, row.NationCode, row.NationName,
			formatFloat(row.ExportAmt), formatFloat(row.ImportAmt), formatFloat(row.TradeAmt),
		})
	}

	name := e.timestamped("customs_country_data")
	return name, e.csv.WriteSimpleCSV(name, headers, rows)
}

// ExportCustomsItems writes per-item traffic for one direction.
func (e *ResultExporter) ExportCustomsItems(direction domain.TradeDirection, itemRows []domain.CustomsItemRow) (string, error) {
	headers := []string{"impexp_year", "impexp_flag", "impexp_nation_code", "impexp_nation_nm",
		"impexp_item_nm", "impexp_item_weight", "impexp_item_money"}

	rows := make([][]string, 0, len(itemRows))
	for _, row := range itemRows {
		rows = append(rows, []string{
			row.Year, string(row.Direction), row.NationCode, row.NationName,
			row.Category, formatFloat(row.Weight), formatFloat(row.Amount),
		})
	}

	name := e.timestamped(fmt.Sprintf("customs_item_%s_data", direction))
	return name, e.csv.WriteSimpleCSV(name, headers, rows)
}

// ExportIndexScores writes one socioeconomic index's rankings.
func (e *ResultExporter) ExportIndexScores(kind domain.IndexKind, scores []domain.IndexScore) (string, error) {
	headers := []string{"index_kind", "year", "country_code", "country_name", "score", "rank"}

	rows := make([][]string, 0, len(scores))
	for _, score := range scores {
		rows = append(rows, []string{
			string(score.Index), score.Year, score.CountryCode, score.CountryName,
			formatFloat(score.Score), formatInt(int64(score.Rank)),
		})
	}

	name := e.timestamped(fmt.Sprintf("%s_data", kind))
	return name, e.csv.WriteSimpleCSV(name, headers, rows)
}

// timestamped builds a snapshot file name for the given prefix.
func (e *ResultExporter) timestamped(prefix string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, e.now().Format("20060102_150405"))
}
