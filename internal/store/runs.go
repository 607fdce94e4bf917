package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "tradepulse/internal/errors"
	"tradepulse/pkg/contracts/domain"
)

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	Job    domain.Job
	Status domain.RunStatus
	Limit  int
}

// CreateRun inserts a new ledger entry and returns its sequence.
func (s *Store) CreateRun(ctx context.Context, run *domain.ProcessingRun) (int64, error) {
	const query = `
		INSERT INTO processing_runs
			(job, status, source_file, stored_file, result_table, row_count,
			 remark, started_at, finished_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		run.Job,
		run.Status,
		run.SourceFile,
		run.StoredFile,
		run.ResultTable,
		run.RowCount,
		run.Remark,
		nullTime(run.StartedAt),
		nullTimePtr(run.FinishedAt),
		run.CreatedBy,
		run.CreatedAt.Format(time.RFC3339),
		run.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "inserting run")
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "reading run sequence")
	}
	run.Seq = seq
	return seq, nil
}

// UpdateRun rewrites the mutable fields of an existing ledger entry.
func (s *Store) UpdateRun(ctx context.Context, run *domain.ProcessingRun) error {
	const query = `
		UPDATE processing_runs
		SET status = ?, result_table = ?, row_count = ?, remark = ?,
		    started_at = ?, finished_at = ?, updated_at = ?
		WHERE seq = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		run.Status,
		run.ResultTable,
		run.RowCount,
		run.Remark,
		nullTime(run.StartedAt),
		nullTimePtr(run.FinishedAt),
		run.UpdatedAt.Format(time.RFC3339),
		run.Seq,
	)
	if err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "updating run %d", run.Seq)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "updating run %d", run.Seq)
	}
	if affected == 0 {
		return apperrors.NewProcessing(apperrors.CodeDataNotFound, "run %d not found", run.Seq)
	}
	return nil
}

// ClaimRun atomically moves a pending run to running so the same
// sequence cannot be dispatched twice. It reports false when the run
// is absent or no longer pending.
func (s *Store) ClaimRun(ctx context.Context, seq int64) (bool, error) {
	const query = `
		UPDATE processing_runs
		SET status = ?, updated_at = ?
		WHERE seq = ? AND status = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		domain.RunRunning,
		time.Now().UTC().Format(time.RFC3339),
		seq,
		domain.RunPending,
	)
	if err != nil {
		return false, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "claiming run %d", seq)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "claiming run %d", seq)
	}
	return affected > 0, nil
}

// ReleaseRun puts a claimed run back to pending. Used when a claimed
// run could not be queued after all.
func (s *Store) ReleaseRun(ctx context.Context, seq int64) error {
	const query = `
		UPDATE processing_runs
		SET status = ?, updated_at = ?
		WHERE seq = ? AND status = ?
	`
	if _, err := s.db.ExecContext(ctx, query,
		domain.RunPending,
		time.Now().UTC().Format(time.RFC3339),
		seq,
		domain.RunRunning,
	); err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "releasing run %d", seq)
	}
	return nil
}

// GetRun retrieves one ledger entry by sequence.
func (s *Store) GetRun(ctx context.Context, seq int64) (*domain.ProcessingRun, error) {
	const query = `
		SELECT seq, job, status, source_file, stored_file, result_table,
		       row_count, remark, started_at, finished_at, created_by,
		       created_at, updated_at
		FROM processing_runs
		WHERE seq = ?
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, seq))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewProcessing(apperrors.CodeDataNotFound, "run %d not found", seq)
	}
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "getting run %d", seq)
	}
	return run, nil
}

// ListRuns returns ledger entries newest first, narrowed by filter.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]*domain.ProcessingRun, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Job != "" {
		conds = append(conds, "job = ?")
		args = append(args, filter.Job)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}

	query := `
		SELECT seq, job, status, source_file, stored_file, result_table,
		       row_count, remark, started_at, finished_at, created_by,
		       created_at, updated_at
		FROM processing_runs
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "listing runs")
	}
	defer rows.Close()

	var runs []*domain.ProcessingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "scanning run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapProcessing(apperrors.CodeDatabase, err, "listing runs")
	}
	return runs, nil
}

// DeleteRun removes a ledger entry. Administrative use only, the
// pipeline never deletes history.
func (s *Store) DeleteRun(ctx context.Context, seq int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM processing_runs WHERE seq = ?`, seq)
	if err != nil {
		return apperrors.WrapProcessing(apperrors.CodeDatabase, err, "deleting run %d", seq)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewProcessing(apperrors.CodeDataNotFound, "run %d not found", seq)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.ProcessingRun, error) {
	var (
		run        domain.ProcessingRun
		startedAt  sql.NullString
		finishedAt sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(
		&run.Seq,
		&run.Job,
		&run.Status,
		&run.SourceFile,
		&run.StoredFile,
		&run.ResultTable,
		&run.RowCount,
		&run.Remark,
		&startedAt,
		&finishedAt,
		&run.CreatedBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedAt.String)
	if finishedAt.Valid && finishedAt.String != "" {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
