package ingest

import (
	"fmt"
	"strings"

	infra "github.com/dvloznov/sheet-to-bq/internal/infra/bigquery"
	"github.com/dvloznov/sheet-to-bq/internal/sheets"
)

// MissingColumnsError reports required columns absent from the sheet header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns not found in sheet header: %s", strings.Join(e.Columns, ", "))
}

// ProjectFirstRow keeps the first data row of table, selects the required
// columns and coerces them to integers. Cells that are missing from a short
// row or not numeric become 0.
func ProjectFirstRow(table *sheets.Table) (*infra.ProjectedRow, error) {
	indexes := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, name := range RequiredColumns {
		i, ok := table.ColumnIndex(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		indexes[name] = i
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	record, err := table.FirstRecord()
	if err != nil {
		return nil, err
	}

	return &infra.ProjectedRow{
		InvoiceNo: ParseIntOrDefault(cell(record, indexes[InvoiceNoColumn]), 0),
		Quantity:  ParseIntOrDefault(cell(record, indexes[QuantityColumn]), 0),
	}, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
