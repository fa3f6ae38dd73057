package bigquery

import (
	"fmt"

	"cloud.google.com/go/bigquery"
)

// ProjectedRow is the single record appended per run. Both columns are
// INTEGER in the destination table.
type ProjectedRow struct {
	InvoiceNo int64 `bigquery:"InvoiceNo" json:"InvoiceNo"` // NULLABLE INTEGER
	Quantity  int64 `bigquery:"Quantity" json:"Quantity"`   // NULLABLE INTEGER
}

// ProjectedRowSchema matches the table pandas-gbq created on first append:
// two NULLABLE INTEGER columns.
var ProjectedRowSchema = bigquery.Schema{
	{Name: "InvoiceNo", Type: bigquery.IntegerFieldType},
	{Name: "Quantity", Type: bigquery.IntegerFieldType},
}

// TableRef addresses the destination table.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// String returns project.dataset.table.
func (t TableRef) String() string {
	return fmt.Sprintf("%s.%s.%s", t.ProjectID, t.DatasetID, t.TableID)
}

// quoted returns the reference quoted for use in GoogleSQL.
func (t TableRef) quoted() string {
	return "`" + t.String() + "`"
}

func (t TableRef) table(client *bigquery.Client) *bigquery.Table {
	// Use fully qualified table name to avoid project ID issues
	return client.DatasetInProject(t.ProjectID, t.DatasetID).Table(t.TableID)
}
