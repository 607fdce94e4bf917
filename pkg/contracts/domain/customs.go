package domain

// CustomsCountryRow is one country's annual trade totals as published
// by the customs office, reconciled to an ISO country code.
type CustomsCountryRow struct {
	Year       string  `json:"impexp_year" db:"impexp_year" validate:"required,len=4"`
	NationCode string  `json:"impexp_nation_code" db:"impexp_nation_code" validate:"required"`
	NationName string  `json:"impexp_nation_nm" db:"impexp_nation_nm" validate:"required"`
	ExportAmt  float64 `json:"impexp_exp_money" db:"impexp_exp_money"`
	ImportAmt  float64 `json:"impexp_imp_money" db:"impexp_imp_money"`
	TradeAmt   float64 `json:"impexp_trade_rate_money" db:"impexp_trade_rate_money"`
}

// CustomsItemRow is one commodity category's annual traffic with one
// partner country, for a single trade direction.
type CustomsItemRow struct {
	Year       string         `json:"impexp_year" db:"impexp_year" validate:"required,len=4"`
	Direction  TradeDirection `json:"impexp_flag" db:"impexp_flag" validate:"required,oneof=export import"`
	NationCode string         `json:"impexp_nation_code" db:"impexp_nation_code" validate:"required"`
	NationName string         `json:"impexp_nation_nm" db:"impexp_nation_nm" validate:"required"`
	Category   string         `json:"impexp_item_nm" db:"impexp_item_nm" validate:"required"`
	Weight     float64        `json:"impexp_item_weight" db:"impexp_item_weight"`
	Amount     float64        `json:"impexp_item_money" db:"impexp_item_money"`
}

// Customs flag tokens as they appear in the direction column of the
// item workbooks.
const (
	CustomsFlagExport = "수출"
	CustomsFlagImport = "수입"
)
