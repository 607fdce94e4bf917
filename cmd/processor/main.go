// Command processor runs a single processing job over one spreadsheet
// without going through the HTTP server. The run is registered in the
// ledger like an uploaded file and executed synchronously.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"tradepulse/internal/bridge"
	"tradepulse/internal/config"
	"tradepulse/internal/infrastructure"
	"tradepulse/internal/ledger"
	"tradepulse/internal/metrics"
	"tradepulse/internal/pipeline"
	"tradepulse/internal/store"
	"tradepulse/pkg/contracts/domain"
)

func main() {
	file := flag.String("file", "", "path to the spreadsheet to process")
	jobName := flag.String("job", "", "processing job (indicator, trade_partner, customs_country, customs_item_export, customs_item_import, socioeconomic)")
	indexName := flag.String("index", "", "ranking index for socioeconomic runs (economic_freedom, corruption_perception, human_development, world_competitiveness)")
	replaceAll := flag.Bool("replace-all", true, "replace the result table instead of appending")
	flag.Parse()

	if *file == "" || *jobName == "" {
		flag.Usage()
		os.Exit(2)
	}
	job := domain.Job(*jobName)
	if !job.Known() {
		slog.Error("Unknown job", slog.String("job", *jobName))
		os.Exit(2)
	}
	index := domain.IndexKind(*indexName)
	if index != "" && !index.Known() {
		slog.Error("Unknown index", slog.String("index", *indexName))
		os.Exit(2)
	}
	if job == domain.JobSocioeconomic && index == "" {
		slog.Error("Socioeconomic runs need -index")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mapper, err := bridge.Load(cfg.Pipeline.MappingFile)
	if err != nil {
		logger.Error("Failed to load country mapping", slog.String("error", err.Error()))
		os.Exit(1)
	}
	st, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		logger.Error("Failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	led := ledger.New(st, logger, cfg.Pipeline.DefaultCreator)
	pipe := pipeline.New(cfg.Pipeline, st, led, mapper, metrics.New(), cfg.Paths.ExportDir, logger)

	ctx := context.Background()
	run, err := led.Register(ctx, job, filepath.Base(*file), *file)
	if err != nil {
		logger.Error("Failed to register run", slog.String("error", err.Error()))
		os.Exit(1)
	}

	result, err := pipe.Execute(ctx, pipeline.Request{
		Seq:        run.Seq,
		Job:        job,
		ReplaceAll: *replaceAll,
		Index:      index,
	})
	if err != nil {
		logger.Error("Failed to read run outcome",
			slog.Int64("seq", run.Seq),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	if result.Status != domain.RunSucceeded {
		logger.Error("Run failed",
			slog.Int64("seq", result.Seq),
			slog.String("remark", result.Remark))
		os.Exit(1)
	}
	logger.Info("Run succeeded",
		slog.Int64("seq", result.Seq),
		slog.String("result_table", result.ResultTable),
		slog.Int64("row_count", result.RowCount))
}
