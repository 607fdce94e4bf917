package domain

import (
	"time"
)

// Job identifies one of the ingestion pipelines.
type Job string

const (
	JobIndicator      Job = "indicator"
	JobTradePartner   Job = "trade_partner"
	JobCustomsCountry Job = "customs_country"
	JobCustomsExport  Job = "customs_item_export"
	JobCustomsImport  Job = "customs_item_import"
	JobSocioeconomic  Job = "socioeconomic"
)

// Known reports whether j names one of the ingestion pipelines.
func (j Job) Known() bool {
	switch j {
	case JobIndicator, JobTradePartner, JobCustomsCountry,
		JobCustomsExport, JobCustomsImport, JobSocioeconomic:
		return true
	}
	return false
}

// RunStatus reflects a run's lifecycle in the work ledger.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ProcessingRun is one entry in the work ledger: a single execution of
// a pipeline over one uploaded file, with its outcome.
type ProcessingRun struct {
	Seq         int64      `json:"seq" db:"seq"`
	Job         Job        `json:"job" db:"job" validate:"required"`
	Status      RunStatus  `json:"status" db:"status" validate:"required"`
	SourceFile  string     `json:"source_file" db:"source_file"`
	StoredFile  string     `json:"stored_file" db:"stored_file"`
	ResultTable string     `json:"result_table" db:"result_table"`
	RowCount    int64      `json:"row_count" db:"row_count"`
	Remark      string     `json:"remark,omitempty" db:"remark"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Finished reports whether the run reached a terminal status.
func (r *ProcessingRun) Finished() bool {
	return r.Status == RunSucceeded || r.Status == RunFailed
}
