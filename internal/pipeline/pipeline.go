// Package pipeline dispatches queued processing runs to the ingestion
// extractors, persists their output and records the outcome in the run
// ledger.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tradepulse/internal/bridge"
	"tradepulse/internal/config"
	"tradepulse/internal/customs"
	apperrors "tradepulse/internal/errors"
	"tradepulse/internal/exporter"
	"tradepulse/internal/indicator"
	"tradepulse/internal/ledger"
	"tradepulse/internal/metrics"
	"tradepulse/internal/socioeconomic"
	"tradepulse/internal/store"
	"tradepulse/internal/tradepartner"
	"tradepulse/pkg/contracts/domain"
)

// Request asks for one queued run to be executed.
type Request struct {
	Seq        int64
	Job        domain.Job
	ReplaceAll bool

	// Index selects the ranking for socioeconomic runs. Empty
	// otherwise.
	Index domain.IndexKind
}

// Pipeline owns the worker pool executing processing runs.
type Pipeline struct {
	cfg     config.PipelineConfig
	store   *store.Store
	ledger  *ledger.Ledger
	export  *exporter.ResultExporter
	metrics *metrics.Metrics
	logger  *slog.Logger

	indicators   *indicator.Extractor
	partners     *tradepartner.Extractor
	customsCtry  *customs.CountryExtractor
	customsItem  *customs.ItemExtractor
	indexes      *socioeconomic.Extractor

	queue chan Request
	group *errgroup.Group
}

// New wires a pipeline over the shared store, ledger and mapper.
func New(cfg config.PipelineConfig, s *store.Store, l *ledger.Ledger, mapper *bridge.Mapper, m *metrics.Metrics, exportDir string, logger *slog.Logger) *Pipeline {
	plog := logger.With(slog.String("component", "pipeline"))
	return &Pipeline{
		cfg:         cfg,
		store:       s,
		ledger:      l,
		export:      exporter.NewResultExporter(exportDir),
		metrics:     m,
		logger:      plog,
		indicators:  indicator.NewExtractor(mapper, logger),
		partners:    tradepartner.NewExtractor(mapper, logger),
		customsCtry: customs.NewCountryExtractor(mapper, logger),
		customsItem: customs.NewItemExtractor(mapper, logger),
		indexes:     socioeconomic.NewExtractor(mapper, logger),
		queue:       make(chan Request, cfg.Workers*4),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// canceled; Wait blocks until they exit.
func (p *Pipeline) Start(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	p.group = group
	for i := 0; i < p.cfg.Workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case req := <-p.queue:
					p.run(ctx, req)
				}
			}
		})
	}
}

// Wait blocks until all workers have exited. Cancellation is how the
// pool shuts down, so it does not count as a worker error.
func (p *Pipeline) Wait() error {
	if p.group == nil {
		return nil
	}
	if err := p.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Enqueue queues a run request, failing when the queue is full or the
// context expires.
func (p *Pipeline) Enqueue(ctx context.Context, req Request) error {
	select {
	case p.queue <- req:
		return nil
	case <-ctx.Done():
		return apperrors.WrapProcessing(apperrors.CodeSystem, ctx.Err(), "queueing run %d", req.Seq)
	default:
		return apperrors.NewProcessing(apperrors.CodeSystem, "run queue is full")
	}
}

// Execute runs one request synchronously, bypassing the worker pool.
// The outcome lands in the ledger either way; the refreshed run is
// returned so callers can inspect it.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*domain.ProcessingRun, error) {
	p.run(ctx, req)
	return p.store.GetRun(ctx, req.Seq)
}

// run executes one request end to end. Failures land in the ledger,
// never on the caller.
func (p *Pipeline) run(ctx context.Context, req Request) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout)
	defer cancel()

	started := time.Now()
	run, err := p.ledger.Start(ctx, req.Seq)
	if err != nil {
		p.logger.Error("cannot start run",
			slog.Int64("seq", req.Seq),
			slog.String("error", err.Error()))
		return
	}

	rows, table, err := p.process(ctx, run, req)
	elapsed := time.Since(started)
	if err != nil {
		if ferr := p.ledger.Fail(ctx, run, err.Error()); ferr != nil {
			p.logger.Error("cannot record failure",
				slog.Int64("seq", req.Seq),
				slog.String("error", ferr.Error()))
		}
		p.metrics.ObserveRun(run.Job, domain.RunFailed, 0, elapsed)
		return
	}

	if serr := p.ledger.Succeed(ctx, run, table, rows); serr != nil {
		p.logger.Error("cannot record success",
			slog.Int64("seq", req.Seq),
			slog.String("error", serr.Error()))
		return
	}
	p.metrics.ObserveRun(run.Job, domain.RunSucceeded, rows, elapsed)
}

// process dispatches to the job's extractor and persists the result.
// It returns the written row count and result table.
func (p *Pipeline) process(ctx context.Context, run *domain.ProcessingRun, req Request) (int64, string, error) {
	switch run.Job {
	case domain.JobIndicator:
		records, err := p.indicators.ExtractFile(run.StoredFile)
		if err != nil {
			return 0, "", err
		}
		rows, err := p.store.ReplaceIndicators(ctx, records, req.ReplaceAll)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.export.ExportIndicators(records); err != nil {
			return 0, "", err
		}
		return rows, store.TableIndicator, nil

	case domain.JobTradePartner:
		profiles, err := p.partners.ExtractFile(run.StoredFile)
		if err != nil {
			return 0, "", err
		}
		rows, err := p.store.ReplaceTradeProfiles(ctx, profiles, req.ReplaceAll)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.export.ExportTradeProfiles(profiles); err != nil {
			return 0, "", err
		}
		return rows, store.TableTradePartner, nil

	case domain.JobCustomsCountry:
		countryRows, err := p.customsCtry.ExtractFile(run.StoredFile)
		if err != nil {
			return 0, "", err
		}
		rows, err := p.store.ReplaceCustomsCountry(ctx, countryRows, req.ReplaceAll)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.export.ExportCustomsCountry(countryRows); err != nil {
			return 0, "", err
		}
		return rows, store.TableCustomsCountry, nil

	case domain.JobCustomsExport, domain.JobCustomsImport:
		direction := domain.DirectionExport
		if run.Job == domain.JobCustomsImport {
			direction = domain.DirectionImport
		}
		itemRows, err := p.customsItem.ExtractFile(run.StoredFile, direction)
		if err != nil {
			return 0, "", err
		}
		rows, err := p.store.ReplaceCustomsItems(ctx, direction, itemRows, req.ReplaceAll)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.export.ExportCustomsItems(direction, itemRows); err != nil {
			return 0, "", err
		}
		return rows, store.TableCustomsItem, nil

	case domain.JobSocioeconomic:
		if req.Index == "" {
			return 0, "", apperrors.NewProcessing(apperrors.CodeInvalidParam,
				"socioeconomic run needs an index kind")
		}
		scores, err := p.indexes.ExtractFile(run.StoredFile, req.Index)
		if err != nil {
			return 0, "", err
		}
		rows, err := p.store.ReplaceIndexScores(ctx, req.Index, scores, req.ReplaceAll)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.export.ExportIndexScores(req.Index, scores); err != nil {
			return 0, "", err
		}
		return rows, store.TableSocioeconomic, nil

	default:
		return 0, "", apperrors.NewProcessing(apperrors.CodeInvalidParam, "unknown job %q", run.Job)
	}
}
