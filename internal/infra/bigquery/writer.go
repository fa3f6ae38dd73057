package bigquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/config"
	"github.com/dvloznov/sheet-to-bq/internal/logger"
)

// TableWriter appends ProjectedRows to one BigQuery table.
type TableWriter struct {
	client    *bigquery.Client
	ref       TableRef
	chunkSize int
	method    string
}

// NewTableWriter creates a TableWriter with its own BigQuery client for the
// table named in cfg. Callers must Close it.
func NewTableWriter(ctx context.Context, cfg config.Config) (*TableWriter, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewTableWriter: creating client: %w", err)
	}
	return &TableWriter{
		client:    client,
		ref:       TableRef{ProjectID: cfg.ProjectID, DatasetID: cfg.DatasetID, TableID: cfg.TableID},
		chunkSize: cfg.ChunkSize,
		method:    cfg.LoadMethod,
	}, nil
}

// Close closes the BigQuery client connection.
func (w *TableWriter) Close() error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}

// Table returns the destination table reference.
func (w *TableWriter) Table() TableRef {
	return w.ref
}

// AppendRows appends rows to the destination table, one request per chunk.
// Existing rows are never replaced or deduplicated.
func (w *TableWriter) AppendRows(ctx context.Context, rows []*ProjectedRow) error {
	log := logger.FromContext(ctx)

	for i, chunk := range chunkRows(rows, w.chunkSize) {
		log.Debug().
			Str("table", w.ref.String()).
			Str("method", w.method).
			Int("chunk", i+1).
			Int("rows", len(chunk)).
			Msg("Appending chunk")

		var err error
		switch w.method {
		case config.LoadMethodStream:
			err = InsertRowsWithClient(ctx, w.client, w.ref, chunk)
		default:
			err = LoadRowsWithClient(ctx, w.client, w.ref, chunk)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertRowsWithClient appends rows through the streaming inserter.
func InsertRowsWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, rows []*ProjectedRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := ref.table(client).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRows: inserting rows: %w", err)
	}

	return nil
}

// LoadRowsWithClient appends rows through a load job with WRITE_APPEND,
// creating the table with ProjectedRowSchema if it does not exist yet.
func LoadRowsWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, rows []*ProjectedRow) error {
	if len(rows) == 0 {
		return nil
	}

	data, err := encodeNDJSON(rows)
	if err != nil {
		return fmt.Errorf("LoadRows: encoding rows: %w", err)
	}

	src := bigquery.NewReaderSource(bytes.NewReader(data))
	src.SourceFormat = bigquery.JSON
	src.Schema = ProjectedRowSchema

	loader := ref.table(client).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("LoadRows: starting load job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("LoadRows: waiting for job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("LoadRows: job %s: %w", job.ID(), err)
	}

	return nil
}

// encodeNDJSON renders rows as newline-delimited JSON for a load job.
func encodeNDJSON(rows []*ProjectedRow) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// chunkRows splits rows into consecutive slices of at most size rows.
func chunkRows(rows []*ProjectedRow, size int) [][]*ProjectedRow {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 || size >= len(rows) {
		return [][]*ProjectedRow{rows}
	}

	chunks := make([][]*ProjectedRow, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
