package store

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "tradepulse/internal/errors"
	"tradepulse/pkg/contracts/domain"
)

// ReplaceIndicators writes indicator records. With replaceAll the
// whole table is rewritten, otherwise records upsert by (country,
// series). Returns the number of rows written.
func (s *Store) ReplaceIndicators(ctx context.Context, records []domain.IndicatorRecord, replaceAll bool) (int64, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceAll {
			if _, err := tx.ExecContext(ctx, `DELETE FROM indicator_series`); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "clearing indicator series")
			}
		}
		const query = `
			INSERT OR REPLACE INTO indicator_series
				(country_code, country_name, series_code, series_name, currency,
				 units, source, definition, note, published, series_values, synthesized)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		for _, rec := range records {
			values, err := encodeValues(rec.Values)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query,
				rec.CountryCode, rec.CountryName, rec.SeriesCode, rec.SeriesName,
				rec.Currency, rec.Units, rec.Source, rec.Definition, rec.Note,
				rec.Published, values, rec.Synthesized,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
					"inserting indicator %s/%s", rec.CountryCode, rec.SeriesCode)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// IndicatorSeries returns the stored records for one country, ordered
// by series code.
func (s *Store) IndicatorSeries(ctx context.Context, countryCode string) ([]domain.IndicatorRecord, error) {
	const query = `
		SELECT country_code, country_name, series_code, series_name, currency,
		       units, source, definition, note, published, series_values, synthesized
		FROM indicator_series
		WHERE country_code = ?
		ORDER BY series_code
	`
	rows, err := s.db.QueryContext(ctx, query, countryCode)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying indicator series")
	}
	defer rows.Close()

	var records []domain.IndicatorRecord
	for rows.Next() {
		var rec domain.IndicatorRecord
		var values string
		if err := rows.Scan(
			&rec.CountryCode, &rec.CountryName, &rec.SeriesCode, &rec.SeriesName,
			&rec.Currency, &rec.Units, &rec.Source, &rec.Definition, &rec.Note,
			&rec.Published, &values, &rec.Synthesized,
		); err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning indicator series")
		}
		if rec.Values, err = decodeValues(values); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReplaceTradeProfiles writes paired partner tables. With replaceAll
// the whole table is rewritten, otherwise each profile replaces its
// own country's rows. Returns the number of pair rows written.
func (s *Store) ReplaceTradeProfiles(ctx context.Context, profiles []domain.CountryTradeProfile, replaceAll bool) (int64, error) {
	var written int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceAll {
			if _, err := tx.ExecContext(ctx, `DELETE FROM trade_partner_pairs`); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "clearing trade partner pairs")
			}
		}
		const query = `
			INSERT OR REPLACE INTO trade_partner_pairs
				(country_code, country_name, year, ord,
				 export_partner, export_rate, import_partner, import_rate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		for _, profile := range profiles {
			if !replaceAll {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM trade_partner_pairs WHERE country_code = ?`,
					profile.CountryCode,
				); err != nil {
					return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
						"clearing trade pairs for %s", profile.CountryCode)
				}
			}
			for ord, row := range profile.Rows {
				if _, err := tx.ExecContext(ctx, query,
					profile.CountryCode, profile.CountryName, profile.Year, ord,
					row.ExportPartner, row.ExportRate, row.ImportPartner, row.ImportRate,
				); err != nil {
					return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
						"inserting trade pair for %s", profile.CountryCode)
				}
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// TradeProfile returns one country's paired partner table in stored
// row order, or a not-found error.
func (s *Store) TradeProfile(ctx context.Context, countryCode string) (*domain.CountryTradeProfile, error) {
	const query = `
		SELECT country_name, year, export_partner, export_rate, import_partner, import_rate
		FROM trade_partner_pairs
		WHERE country_code = ?
		ORDER BY ord
	`
	rows, err := s.db.QueryContext(ctx, query, countryCode)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying trade profile")
	}
	defer rows.Close()

	profile := &domain.CountryTradeProfile{CountryCode: countryCode}
	for rows.Next() {
		var row domain.TradePairRow
		if err := rows.Scan(
			&profile.CountryName, &profile.Year,
			&row.ExportPartner, &row.ExportRate, &row.ImportPartner, &row.ImportRate,
		); err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning trade pair")
		}
		profile.Rows = append(profile.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying trade profile")
	}
	if len(profile.Rows) == 0 {
		return nil, apperrors.NewProcessing(apperrors.CodeDataNotFound,
			"no trade profile for %s", countryCode)
	}
	return profile, nil
}

// ReplaceCustomsCountry writes country trade totals. Rows upsert by
// (year, country); replaceAll rewrites the table.
func (s *Store) ReplaceCustomsCountry(ctx context.Context, rows []domain.CustomsCountryRow, replaceAll bool) (int64, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceAll {
			if _, err := tx.ExecContext(ctx, `DELETE FROM customs_country_stats`); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "clearing customs country stats")
			}
		}
		const query = `
			INSERT OR REPLACE INTO customs_country_stats
				(impexp_year, impexp_nation_code, impexp_nation_nm,
				 impexp_exp_money, impexp_imp_money, impexp_trade_rate_money)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, query,
				row.Year, row.NationCode, row.NationName,
				row.ExportAmt, row.ImportAmt, row.TradeAmt,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
					"inserting customs country row %s/%s", row.Year, row.NationCode)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// CustomsCountryRows returns stored totals for one year ordered by
// country name.
func (s *Store) CustomsCountryRows(ctx context.Context, year string) ([]domain.CustomsCountryRow, error) {
	const query = `
		SELECT impexp_year, impexp_nation_code, impexp_nation_nm,
		       impexp_exp_money, impexp_imp_money, impexp_trade_rate_money
		FROM customs_country_stats
		WHERE impexp_year = ?
		ORDER BY impexp_nation_nm
	`
	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying customs country stats")
	}
	defer rows.Close()

	var out []domain.CustomsCountryRow
	for rows.Next() {
		var row domain.CustomsCountryRow
		if err := rows.Scan(
			&row.Year, &row.NationCode, &row.NationName,
			&row.ExportAmt, &row.ImportAmt, &row.TradeAmt,
		); err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning customs country row")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceCustomsItems writes item traffic for one direction. With
// replaceAll only that direction's rows are cleared, so export and
// import loads do not clobber each other.
func (s *Store) ReplaceCustomsItems(ctx context.Context, direction domain.TradeDirection, rows []domain.CustomsItemRow, replaceAll bool) (int64, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceAll {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM customs_item_stats WHERE impexp_flag = ?`, direction,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "clearing customs item stats")
			}
		}
		const query = `
			INSERT OR REPLACE INTO customs_item_stats
				(impexp_year, impexp_flag, impexp_nation_code, impexp_nation_nm,
				 impexp_item_nm, impexp_item_weight, impexp_item_money)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, query,
				row.Year, row.Direction, row.NationCode, row.NationName,
				row.Category, row.Weight, row.Amount,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
					"inserting customs item row %s/%s", row.Year, row.Category)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// CustomsItemRows returns stored item rows for one year and direction,
// ordered by amount descending.
func (s *Store) CustomsItemRows(ctx context.Context, year string, direction domain.TradeDirection) ([]domain.CustomsItemRow, error) {
	const query = `
		SELECT impexp_year, impexp_flag, impexp_nation_code, impexp_nation_nm,
		       impexp_item_nm, impexp_item_weight, impexp_item_money
		FROM customs_item_stats
		WHERE impexp_year = ? AND impexp_flag = ?
		ORDER BY impexp_item_money DESC
	`
	rows, err := s.db.QueryContext(ctx, query, year, direction)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying customs item stats")
	}
	defer rows.Close()

	var out []domain.CustomsItemRow
	for rows.Next() {
		var row domain.CustomsItemRow
		if err := rows.Scan(
			&row.Year, &row.Direction, &row.NationCode, &row.NationName,
			&row.Category, &row.Weight, &row.Amount,
		); err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning customs item row")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceIndexScores writes one index's rankings. With replaceAll only
// that index's rows are cleared.
func (s *Store) ReplaceIndexScores(ctx context.Context, kind domain.IndexKind, scores []domain.IndexScore, replaceAll bool) (int64, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceAll {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM socioeconomic_ranks WHERE index_kind = ?`, kind,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "clearing index scores")
			}
		}
		const query = `
			INSERT OR REPLACE INTO socioeconomic_ranks
				(index_kind, year, country_code, country_name, score, rank_no)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for _, score := range scores {
			if _, err := tx.ExecContext(ctx, query,
				score.Index, score.Year, score.CountryCode, score.CountryName,
				score.Score, score.Rank,
			); err != nil {
				return apperrors.WrapProcessing(apperrors.CodeDatabase, err,
					"inserting index score %s/%s", score.Index, score.CountryCode)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(scores)), nil
}

// IndexScores returns one index's stored rankings ordered by rank.
func (s *Store) IndexScores(ctx context.Context, kind domain.IndexKind) ([]domain.IndexScore, error) {
	const query = `
		SELECT index_kind, year, country_code, country_name, score, rank_no
		FROM socioeconomic_ranks
		WHERE index_kind = ?
		ORDER BY rank_no
	`
	rows, err := s.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "querying index scores")
	}
	defer rows.Close()

	var out []domain.IndexScore
	for rows.Next() {
		var score domain.IndexScore
		if err := rows.Scan(
			&score.Index, &score.Year, &score.CountryCode, &score.CountryName,
			&score.Score, &score.Rank,
		); err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning index score")
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

// encodeValues serializes a year-keyed value map for storage.
func encodeValues(values map[string]domain.ClassifiedValue) (string, error) {
	m := make(map[string]string, len(values))
	for year, v := range values {
		m[year] = v.String()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", apperrors.WrapProcessing(apperrors.CodeDataProcessing, err, "encoding series values")
	}
	return string(b), nil
}

func decodeValues(s string) (map[string]domain.ClassifiedValue, error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDataProcessing, err, "decoding series values")
	}
	values := make(map[string]domain.ClassifiedValue, len(m))
	for year, raw := range m {
		v, ok := domain.ParseClassifiedValue(raw)
		if !ok {
			return nil, apperrors.NewProcessing(apperrors.CodeDataProcessing,
				"malformed series value %q for year %s", raw, year)
		}
		values[year] = v
	}
	return values, nil
}
