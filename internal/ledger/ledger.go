// Package ledger tracks the lifecycle of processing runs: registered
// on upload, started when a worker picks the file up, and finished
// with either a row count or a failure remark.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"tradepulse/internal/store"
	"tradepulse/pkg/contracts/domain"
)

// Ledger records run lifecycle transitions in the store.
type Ledger struct {
	store   *store.Store
	logger  *slog.Logger
	creator string
	now     func() time.Time
}

// New creates a ledger. creator is stamped on every run it registers.
func New(s *store.Store, logger *slog.Logger, creator string) *Ledger {
	return &Ledger{
		store:   s,
		logger:  logger.With(slog.String("component", "ledger")),
		creator: creator,
		now:     time.Now,
	}
}

// Register creates a pending run for an uploaded file.
func (l *Ledger) Register(ctx context.Context, job domain.Job, sourceFile, storedFile string) (*domain.ProcessingRun, error) {
	now := l.now().UTC()
	run := &domain.ProcessingRun{
		Job:        job,
		Status:     domain.RunPending,
		SourceFile: sourceFile,
		StoredFile: storedFile,
		CreatedBy:  l.creator,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := l.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	l.logger.Info("run registered",
		slog.Int64("seq", run.Seq),
		slog.String("job", string(job)),
		slog.String("source_file", sourceFile))
	return run, nil
}

// Start marks a run as running and stamps its start time.
func (l *Ledger) Start(ctx context.Context, seq int64) (*domain.ProcessingRun, error) {
	run, err := l.store.GetRun(ctx, seq)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	run.Status = domain.RunRunning
	run.StartedAt = now
	run.UpdatedAt = now
	if err := l.store.UpdateRun(ctx, run); err != nil {
		return nil, err
	}
	l.logger.Info("run started", slog.Int64("seq", seq), slog.String("job", string(run.Job)))
	return run, nil
}

// Succeed marks a run as succeeded with its result table and count.
func (l *Ledger) Succeed(ctx context.Context, run *domain.ProcessingRun, resultTable string, rowCount int64) error {
	now := l.now().UTC()
	run.Status = domain.RunSucceeded
	run.ResultTable = resultTable
	run.RowCount = rowCount
	run.Remark = "success"
	run.FinishedAt = &now
	run.UpdatedAt = now
	if err := l.store.UpdateRun(ctx, run); err != nil {
		return err
	}
	l.logger.Info("run succeeded",
		slog.Int64("seq", run.Seq),
		slog.String("result_table", resultTable),
		slog.Int64("row_count", rowCount))
	return nil
}

// Fail marks a run as failed with the failure remark.
func (l *Ledger) Fail(ctx context.Context, run *domain.ProcessingRun, remark string) error {
	now := l.now().UTC()
	run.Status = domain.RunFailed
	run.Remark = remark
	run.FinishedAt = &now
	run.UpdatedAt = now
	if err := l.store.UpdateRun(ctx, run); err != nil {
		return err
	}
	l.logger.Warn("run failed", slog.Int64("seq", run.Seq), slog.String("remark", remark))
	return nil
}
