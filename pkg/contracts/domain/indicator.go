package domain

// IndicatorRecord is one reconciled indicator series for a country,
// keyed by series code and spanning a contiguous run of year slots.
type IndicatorRecord struct {
	CountryCode  string                     `json:"country_code" db:"country_code" validate:"required"`
	CountryName  string                     `json:"country_name" db:"country_name"`
	SeriesCode   string                     `json:"series_code" db:"series_code" validate:"required"`
	SeriesName   string                     `json:"series_name" db:"series_name"`
	Currency     string                     `json:"currency,omitempty" db:"currency"`
	Units        string                     `json:"units,omitempty" db:"units"`
	Source       string                     `json:"source,omitempty" db:"source"`
	Definition   string                     `json:"definition,omitempty" db:"definition"`
	Note         string                     `json:"note,omitempty" db:"note"`
	Published    string                     `json:"published,omitempty" db:"published"`
	Values       map[string]ClassifiedValue `json:"values"`
	Synthesized  bool                       `json:"synthesized" db:"synthesized"`
}

// SeriesEntry pairs a catalog series code with its descriptive title.
type SeriesEntry struct {
	Code  string
	Title string
}

// SeriesCatalog is the fixed set of series every country record set
// must cover, in publication order. Codes absent from a workbook are
// synthesized with all-missing values under the catalog title.
var SeriesCatalog = []SeriesEntry{
	{"PSBR", "Budget balance (% of GDP)"},
	{"DCPI", "Consumer prices (% change pa; av)"},
	{"CARA", "Current-account balance (% of GDP)"},
	{"BALC", "Current-account balance (US$)"},
	{"XRPD", "Exchange rate LCU:US$ (av)"},
	{"XPP1", "Exports to main partner 1 (% of total)"},
	{"XPP2", "Exports to main partner 2 (% of total)"},
	{"XPP3", "Exports to main partner 3 (% of total)"},
	{"XPP4", "Exports to main partner 4 (% of total)"},
	{"FRES", "Foreign-exchange reserves (US$)"},
	{"MEXP", "Merchandise exports fob (US$)"},
	{"MIMP", "Merchandise imports fob (US$)"},
	{"MPP1", "Imports from main partner 1 (% of total)"},
	{"MPP2", "Imports from main partner 2 (% of total)"},
	{"MPP3", "Imports from main partner 3 (% of total)"},
	{"PUDP", "Public debt (% of GDP)"},
	{"DGDP", "Real GDP growth (%)"},
	{"TDPY", "Total external debt (% of GDP)"},
	{"BALM", "Trade balance (US$)"},
}

// InCatalog reports whether code belongs to the series catalog.
func InCatalog(code string) bool {
	for _, entry := range SeriesCatalog {
		if entry.Code == code {
			return true
		}
	}
	return false
}
