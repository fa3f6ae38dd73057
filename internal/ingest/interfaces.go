package ingest

import (
	"context"
	"fmt"

	"github.com/dvloznov/sheet-to-bq/internal/archive"
	"github.com/dvloznov/sheet-to-bq/internal/config"
	infra "github.com/dvloznov/sheet-to-bq/internal/infra/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/sheets"
)

// SheetSource provides the tabular data a run projects from.
type SheetSource interface {
	// FetchSheet retrieves and parses the source CSV.
	FetchSheet(ctx context.Context) (*sheets.Table, error)

	// Location describes where the data comes from, for logs.
	Location() string
}

// RowWriter appends projected rows to the destination table.
type RowWriter interface {
	AppendRows(ctx context.Context, rows []*infra.ProjectedRow) error
}

// SnapshotStore keeps the raw CSV body of a run.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, runID string, data []byte) (string, error)
}

// SheetTabSource reads one tab of a published spreadsheet.
type SheetTabSource struct {
	client    *sheets.Client
	sheetName string
}

// NewSheetTabSource creates a source for the tab named sheetName.
func NewSheetTabSource(client *sheets.Client, sheetName string) *SheetTabSource {
	return &SheetTabSource{client: client, sheetName: sheetName}
}

// FetchSheet delegates to sheets.Client.FetchSheet.
func (s *SheetTabSource) FetchSheet(ctx context.Context) (*sheets.Table, error) {
	return s.client.FetchSheet(ctx, s.sheetName)
}

// Location returns the export URL.
func (s *SheetTabSource) Location() string {
	return s.client.ExportURL(s.sheetName)
}

// snapshotSource replays a previously archived CSV body.
type snapshotSource struct {
	uri string
}

func (s *snapshotSource) FetchSheet(ctx context.Context) (*sheets.Table, error) {
	bucket, _, err := archive.ParseGCSURI(s.uri)
	if err != nil {
		return nil, err
	}

	store, err := archive.NewStore(ctx, bucket)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	data, err := store.FetchSnapshot(ctx, s.uri)
	if err != nil {
		return nil, err
	}
	return sheets.ParseCSV(data)
}

func (s *snapshotSource) Location() string {
	return s.uri
}

// tableRowWriter opens a BigQuery client for the duration of one append.
type tableRowWriter struct {
	cfg config.Config
}

func (w *tableRowWriter) AppendRows(ctx context.Context, rows []*infra.ProjectedRow) error {
	tw, err := infra.NewTableWriter(ctx, w.cfg)
	if err != nil {
		return err
	}
	defer tw.Close()

	return tw.AppendRows(ctx, rows)
}

// bucketSnapshotStore opens a storage client for the duration of one save.
type bucketSnapshotStore struct {
	bucket string
}

func (s *bucketSnapshotStore) SaveSnapshot(ctx context.Context, runID string, data []byte) (string, error) {
	store, err := archive.NewStore(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("SaveSnapshot: %w", err)
	}
	defer store.Close()

	return store.SaveSnapshot(ctx, runID, data)
}
