// Package store persists pipeline results and the processing run
// ledger in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "tradepulse/internal/errors"
	"tradepulse/pkg/contracts/domain"
)

//go:embed schema.sql
var schemaSQL string

// Result table names, recorded on successful runs so operators can see
// where a file landed.
const (
	TableIndicator      = "indicator_series"
	TableTradePartner   = "trade_partner_pairs"
	TableCustomsCountry = "customs_country_stats"
	TableCustomsItem    = "customs_item_stats"
	TableSocioeconomic  = "socioeconomic_ranks"
)

// Store wraps a SQLite database holding results and the run ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// embedded schema. Pragmas ride on the DSN so every pooled connection
// carries them.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds(),
	)
	return open(dsn)
}

// OpenMemory opens a fresh in-memory database. Intended for tests. The
// database is named so parallel opens stay isolated while the pool
// shares one cache.
func OpenMemory() (*Store, error) {
	name := uuid.NewString()
	return open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name))
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "opening database")
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "applying schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "pinging database")
	}
	return nil
}

// TableForJob returns the result table a job writes to.
func TableForJob(job domain.Job) string {
	switch job {
	case domain.JobIndicator:
		return TableIndicator
	case domain.JobTradePartner:
		return TableTradePartner
	case domain.JobCustomsCountry:
		return TableCustomsCountry
	case domain.JobCustomsExport, domain.JobCustomsImport:
		return TableCustomsItem
	case domain.JobSocioeconomic:
		return TableSocioeconomic
	default:
		return ""
	}
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "committing transaction")
	}
	return nil
}
