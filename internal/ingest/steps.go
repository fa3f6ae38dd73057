package ingest

import (
	"context"
	"fmt"

	infra "github.com/dvloznov/sheet-to-bq/internal/infra/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
	"github.com/dvloznov/sheet-to-bq/internal/sheets"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID       string
	Table       *sheets.Table
	SnapshotURI string
	Row         *infra.ProjectedRow
}

// StepError records which step failed. Err is the step's own error.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FetchSheetStep retrieves and parses the source CSV.
type FetchSheetStep struct {
	Source SheetSource
}

func (s *FetchSheetStep) Name() string { return StepFetch }

func (s *FetchSheetStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	log.Info().Str("url", s.Source.Location()).Msg("Attempting to read data")

	table, err := s.Source.FetchSheet(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Strs("columns", table.Header).
		Int("rows", len(table.Records)).
		Msg("Sheet fetched")

	state.Table = table
	return nil
}

// SnapshotStep archives the raw CSV body. It never fails the run; a nil
// Store disables it.
type SnapshotStep struct {
	Store SnapshotStore
}

func (s *SnapshotStep) Name() string { return StepSnapshot }

func (s *SnapshotStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Store == nil || state.Table == nil {
		return nil
	}

	log := logger.FromContext(ctx)
	uri, err := s.Store.SaveSnapshot(ctx, state.RunID, state.Table.Raw)
	if err != nil {
		log.Warn().Err(err).Msg("Snapshot failed, continuing without it")
		return nil
	}

	log.Info().Str("snapshot_uri", uri).Msg("Snapshot stored")
	state.SnapshotURI = uri
	return nil
}

// ProjectRowStep keeps the first row and coerces the required columns.
type ProjectRowStep struct{}

func (s *ProjectRowStep) Name() string { return StepProject }

func (s *ProjectRowStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Table == nil {
		return sheets.ErrEmptySheet
	}

	row, err := ProjectFirstRow(state.Table)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int64(InvoiceNoColumn, row.InvoiceNo).
		Int64(QuantityColumn, row.Quantity).
		Msg("Processed 1 row(s) from sheet")

	state.Row = row
	return nil
}

// LoadRowStep appends the projected row to the destination table.
type LoadRowStep struct {
	Writer      RowWriter
	Destination string
}

func (s *LoadRowStep) Name() string { return StepLoad }

func (s *LoadRowStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	log.Info().Str("table", s.Destination).Msg("Attempting to write data")

	if err := s.Writer.AppendRows(ctx, []*infra.ProjectedRow{state.Row}); err != nil {
		return err
	}

	log.Info().Str("table", s.Destination).Msg("Data loaded")
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
// A panicking step is reported as that step's error.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for _, step := range p.steps {
		if err := runStep(ctx, step, state); err != nil {
			return &StepError{Step: step.Name(), Err: err}
		}
	}
	return nil
}

func runStep(ctx context.Context, step PipelineStep, state *PipelineState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Execute(ctx, state)
}

// NewSheetIngestionPipeline creates the standard fetch, snapshot, project, load pipeline.
func NewSheetIngestionPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&FetchSheetStep{Source: deps.Source},
		&SnapshotStep{Store: deps.Snapshots},
		&ProjectRowStep{},
		&LoadRowStep{Writer: deps.Writer, Destination: deps.Destination},
	)
}
