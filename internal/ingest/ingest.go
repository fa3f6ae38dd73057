// Package ingest loads the first row of a published spreadsheet into a
// BigQuery table.
//
// A run is fetch -> snapshot (optional) -> project -> load. Every failure,
// including a panic inside a step, ends the run and is reported through the
// returned Result; nothing is retried and nothing escapes Handle.
package ingest

import (
	"context"
	"errors"

	"github.com/dvloznov/sheet-to-bq/internal/config"
	infra "github.com/dvloznov/sheet-to-bq/internal/infra/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
	"github.com/dvloznov/sheet-to-bq/internal/sheets"
	"github.com/google/uuid"
)

var (
	// ErrNoSource is returned when a run has no sheet to read from.
	ErrNoSource = errors.New("no sheet source configured")
	// ErrNoWriter is returned when a run has no table to append to.
	ErrNoWriter = errors.New("no row writer configured")
)

// Deps are the collaborators of one run.
type Deps struct {
	Source SheetSource
	Writer RowWriter
	// Snapshots may be nil to skip archiving.
	Snapshots SnapshotStore
	// Destination names the table in logs.
	Destination string
	// RunID is generated when empty.
	RunID string
}

// Result is the outcome of one run: either Row was appended or Err says why not.
type Result struct {
	RunID       string
	Row         *infra.ProjectedRow
	SnapshotURI string
	Err         error
}

// OK reports whether the row was appended.
func (r Result) OK() bool {
	return r.Err == nil
}

// Cause returns the failing step's own error, without the step name.
func (r Result) Cause() error {
	var stepErr *StepError
	if errors.As(r.Err, &stepErr) {
		return stepErr.Err
	}
	return r.Err
}

// Message converts the result to the status string returned to callers.
func (r Result) Message() string {
	if r.OK() {
		return SuccessMessage
	}
	return ErrorPrefix + r.Cause().Error()
}

// Handle runs one ingestion against the configured sheet and table and
// returns the status string. It never panics and never returns an error.
func Handle(ctx context.Context, cfg config.Config) string {
	return Run(ctx, cfg).Message()
}

// Run performs one ingestion with clients created for this run only.
func Run(ctx context.Context, cfg config.Config) Result {
	client := sheets.NewClient(cfg.SheetsHost, cfg.SpreadsheetID, cfg.FetchTimeout)
	return RunWithDeps(ctx, depsFromConfig(cfg, NewSheetTabSource(client, cfg.SheetName)))
}

// RunFromSnapshot loads the first row of an archived CSV snapshot instead of
// the live sheet. The replayed body is not archived again.
func RunFromSnapshot(ctx context.Context, cfg config.Config, gcsURI string) Result {
	deps := depsFromConfig(cfg, &snapshotSource{uri: gcsURI})
	deps.Snapshots = nil
	return RunWithDeps(ctx, deps)
}

func depsFromConfig(cfg config.Config, source SheetSource) Deps {
	deps := Deps{
		Source:      source,
		Writer:      &tableRowWriter{cfg: cfg},
		Destination: cfg.TableRef(),
	}
	if cfg.SnapshotBucket != "" {
		deps.Snapshots = &bucketSnapshotStore{bucket: cfg.SnapshotBucket}
	}
	return deps
}

func (d Deps) validate() error {
	if d.Source == nil {
		return ErrNoSource
	}
	if d.Writer == nil {
		return ErrNoWriter
	}
	return nil
}

// RunWithDeps performs one ingestion with the given collaborators.
func RunWithDeps(ctx context.Context, deps Deps) Result {
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"run_id": runID,
	})
	ctx = logger.WithContext(ctx, log)

	if err := deps.validate(); err != nil {
		log.Error().Err(err).Msg("An error occurred during function execution")
		return Result{RunID: runID, Err: err}
	}

	state := &PipelineState{RunID: runID}
	err := NewSheetIngestionPipeline(deps).Execute(ctx, state)

	result := Result{
		RunID:       runID,
		SnapshotURI: state.SnapshotURI,
		Err:         err,
	}
	if err != nil {
		var stepErr *StepError
		step := ""
		if errors.As(err, &stepErr) {
			step = stepErr.Step
		}
		log.Error().Err(result.Cause()).Str("step", step).Msg("An error occurred during function execution")
		return result
	}

	result.Row = state.Row
	log.Info().Msg("Data loaded successfully into BigQuery")
	return result
}
