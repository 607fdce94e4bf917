package indicator

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tradepulse/internal/bridge"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/xlsx"
	"tradepulse/pkg/contracts/domain"
)

func testExtractor() *Extractor {
	mapper := bridge.NewMapper(
		map[string]string{"germany": "DE", "france": "FR"},
		map[string]string{"DE": "Germany", "FR": "France"},
		nil,
	)
	return NewExtractor(mapper, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func countrySheet() *xlsx.Table {
	estimated := func(v string) xlsx.Cell { return xlsx.Cell{Value: v, Estimated: true} }

	return &xlsx.Table{
		Name: "DE",
		Rows: []xlsx.Row{
			xlsx.NewRow("Economist Intelligence Unit"),
			xlsx.NewRow("Series", "Code", "Currency", "Units", "2022", "2023"),
			{
				{Value: "Real GDP growth"}, {Value: "DGDP"}, {Value: "EUR"}, {Value: "%"},
				{Value: "1.86"}, estimated("2.34"),
			},
			xlsx.NewRow("Consumer prices", "DCPI", "EUR", "%", "–", "5.9"),
		},
	}
}

func TestExtractSheet(t *testing.T) {
	records, err := testExtractor().ExtractSheet(countrySheet())
	require.NoError(t, err)
	require.Len(t, records, len(domain.SeriesCatalog), "every catalog code is present")

	byCode := make(map[string]domain.IndicatorRecord)
	for _, rec := range records {
		assert.Equal(t, "DE", rec.CountryCode)
		assert.Equal(t, "Germany", rec.CountryName)
		byCode[rec.SeriesCode] = rec
	}

	gdp := byCode["DGDP"]
	assert.False(t, gdp.Synthesized)
	assert.Equal(t, "Real GDP growth", gdp.SeriesName)
	assert.Equal(t, "EUR", gdp.Currency)
	assert.Equal(t, "ACT|1.9", gdp.Values["2022"].String(), "values round to one decimal")
	assert.Equal(t, "EST|2.3", gdp.Values["2023"].String(), "styled cells classify as estimates")

	cpi := byCode["DCPI"]
	assert.Equal(t, "–", cpi.Values["2022"].String(), "missing marker stays missing")
	assert.Equal(t, "ACT|5.9", cpi.Values["2023"].String())
}

type indicatorSheet struct {
	name string
	rows [][]interface{}
}

func writeIndicatorWorkbook(t *testing.T, sheets []indicatorSheet) string {
	t.Helper()

	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "indicator.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestExtractFile_ForecastPaddingSpansSheets(t *testing.T) {
	path := writeIndicatorWorkbook(t, []indicatorSheet{
		{name: "DE", rows: [][]interface{}{
			{"Series", "Code", "2022", "2023"},
			{"Real GDP growth", "DGDP", 1.8, 2.3},
		}},
		{name: "FR", rows: [][]interface{}{
			{"Series", "Code", "2022", "2023", "2024"},
			{"Real GDP growth", "DGDP", 1.1, 1.5, 1.9},
		}},
	})

	records, err := testExtractor().ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2*len(domain.SeriesCatalog))

	wantYears := len(records[0].Values)
	var de, fr domain.IndicatorRecord
	for _, rec := range records {
		assert.Len(t, rec.Values, wantYears, "all records share the same year columns")
		if rec.SeriesCode == "DGDP" {
			switch rec.CountryCode {
			case "DE":
				de = rec
			case "FR":
				fr = rec
			}
		}
	}

	assert.Equal(t, "ACT|1.9", fr.Values["2024"].String())
	assert.Equal(t, "–", de.Values["2024"].String(),
		"a year another sheet publishes stays missing, not forecast")
	assert.Equal(t, "FOR", de.Values["2025"].String())
	assert.Equal(t, "FOR", fr.Values["2025"].String())
	assert.Equal(t, "FOR", de.Values["2051"].String())
	_, beyond := de.Values["2052"]
	assert.False(t, beyond, "padding stops at slot 51")
}

func TestExtractSheet_SynthesizesAbsentCodes(t *testing.T) {
	records, err := testExtractor().ExtractSheet(countrySheet())
	require.NoError(t, err)

	var synthesized int
	for _, rec := range records {
		if rec.Synthesized {
			synthesized++
			assert.Equal(t, "–", rec.Values["2022"].String())
			assert.Equal(t, "–", rec.Values["2023"].String())
			assert.NotEmpty(t, rec.SeriesName, "synthesized records carry the catalog title")
		}
		if rec.SeriesCode == "PSBR" {
			assert.Equal(t, "Budget balance (% of GDP)", rec.SeriesName)
		}
	}
	assert.Equal(t, len(domain.SeriesCatalog)-2, synthesized)
}

func TestExtractSheet_DuplicateCodeLastWins(t *testing.T) {
	table := &xlsx.Table{
		Name: "DE",
		Rows: []xlsx.Row{
			xlsx.NewRow("Series", "Code", "2023"),
			xlsx.NewRow("First version", "DGDP", "1.0"),
			xlsx.NewRow("Second version", "DGDP", "2.0"),
		},
	}
	records, err := testExtractor().ExtractSheet(table)
	require.NoError(t, err)

	for _, rec := range records {
		if rec.SeriesCode == "DGDP" {
			assert.Equal(t, "Second version", rec.SeriesName)
			assert.Equal(t, "ACT|2.0", rec.Values["2023"].String())
		}
	}
}

func TestExtractSheet_HeaderNotFound(t *testing.T) {
	table := &xlsx.Table{
		Name: "DE",
		Rows: []xlsx.Row{xlsx.NewRow("no", "header", "here")},
	}
	_, err := testExtractor().ExtractSheet(table)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeHeaderNotFound, apperrors.CodeOf(err))
}

func TestExtractSheet_UnmappedCountrySkipped(t *testing.T) {
	table := countrySheet()
	table.Name = "ZZ"
	records, err := testExtractor().ExtractSheet(table)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractSheet_IgnoresNonCatalogCodes(t *testing.T) {
	table := &xlsx.Table{
		Name: "DE",
		Rows: []xlsx.Row{
			xlsx.NewRow("Series", "Code", "2023"),
			xlsx.NewRow("Bogus series", "ZZZZ", "9.9"),
		},
	}
	records, err := testExtractor().ExtractSheet(table)
	require.NoError(t, err)

	for _, rec := range records {
		assert.True(t, rec.Synthesized, "non-catalog rows contribute nothing")
	}
}
