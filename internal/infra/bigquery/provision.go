package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// EnsureTableWithClient creates the destination table if it does not exist.
// An existing table is left untouched, whatever its schema.
func EnsureTableWithClient(ctx context.Context, client *bigquery.Client, ref TableRef) error {
	q := client.Query(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			InvoiceNo INT64,
			Quantity  INT64
		)
	`, ref.quoted()))

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("EnsureTable: running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("EnsureTable: waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("EnsureTable: job error: %w", err)
	}

	return nil
}

// CountRowsWithClient returns the number of rows in the destination table.
func CountRowsWithClient(ctx context.Context, client *bigquery.Client, ref TableRef) (int64, error) {
	q := client.Query(fmt.Sprintf(`SELECT COUNT(*) AS row_count FROM %s`, ref.quoted()))

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountRows: query read: %w", err)
	}

	var count int64
	for {
		var r struct {
			RowCount int64 `bigquery:"row_count"`
		}
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("CountRows: iter next: %w", err)
		}
		count = r.RowCount
	}

	return count, nil
}

// EnsureTable delegates to EnsureTableWithClient with the writer's client.
func (w *TableWriter) EnsureTable(ctx context.Context) error {
	return EnsureTableWithClient(ctx, w.client, w.ref)
}

// CountRows delegates to CountRowsWithClient with the writer's client.
func (w *TableWriter) CountRows(ctx context.Context) (int64, error) {
	return CountRowsWithClient(ctx, w.client, w.ref)
}
