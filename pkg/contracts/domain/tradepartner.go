package domain

// TradeDirection distinguishes export sheets from import sheets.
type TradeDirection string

const (
	DirectionExport TradeDirection = "export"
	DirectionImport TradeDirection = "import"
)

// TradeRelation is a single partner share extracted from one sheet:
// the reporting country, its partner, and the partner's share of the
// reporting country's trade for the reference year.
type TradeRelation struct {
	Country   string         `json:"country" validate:"required"`
	Partner   string         `json:"partner" validate:"required"`
	Direction TradeDirection `json:"direction" validate:"required,oneof=export import"`
	Rate      float64        `json:"rate" validate:"min=0"`
	Year      string         `json:"year"`
}

// TradePairRow pairs the nth export partner with the nth import
// partner for one country. Either side may be blank when the two
// partner lists differ in length.
type TradePairRow struct {
	ExportPartner string `json:"export_partner"`
	ExportRate    string `json:"export_rate"`
	ImportPartner string `json:"import_partner"`
	ImportRate    string `json:"import_rate"`
}

// CountryTradeProfile is the paired partner table for one country.
type CountryTradeProfile struct {
	CountryCode string         `json:"country_code" db:"country_code"`
	CountryName string         `json:"country_name" db:"country_name"`
	Year        string         `json:"year" db:"year"`
	Rows        []TradePairRow `json:"rows"`
}
