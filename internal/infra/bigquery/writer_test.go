package bigquery

import (
	"context"
	"testing"

	"cloud.google.com/go/bigquery"
)

func TestChunkRows(t *testing.T) {
	rows := make([]*ProjectedRow, 5)
	for i := range rows {
		rows[i] = &ProjectedRow{InvoiceNo: int64(i)}
	}

	tests := []struct {
		name       string
		rows       []*ProjectedRow
		size       int
		wantChunks []int
	}{
		{"no rows", nil, 100, nil},
		{"single row", rows[:1], 100000, []int{1}},
		{"exact multiple", rows[:4], 2, []int{2, 2}},
		{"remainder", rows, 2, []int{2, 2, 1}},
		{"size larger than rows", rows, 10, []int{5}},
		{"non-positive size keeps one chunk", rows, 0, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkRows(tt.rows, tt.size)
			if len(chunks) != len(tt.wantChunks) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantChunks))
			}
			for i, c := range chunks {
				if len(c) != tt.wantChunks[i] {
					t.Errorf("chunk %d has %d rows, want %d", i, len(c), tt.wantChunks[i])
				}
			}
		})
	}

	// Order is preserved across chunks.
	chunks := chunkRows(rows, 2)
	if chunks[2][0].InvoiceNo != 4 {
		t.Errorf("last chunk starts with InvoiceNo %d, want 4", chunks[2][0].InvoiceNo)
	}
}

func TestEncodeNDJSON(t *testing.T) {
	data, err := encodeNDJSON([]*ProjectedRow{
		{InvoiceNo: 536365, Quantity: 6},
		{InvoiceNo: 0, Quantity: 0},
	})
	if err != nil {
		t.Fatalf("encodeNDJSON() error = %v", err)
	}

	want := "{\"InvoiceNo\":536365,\"Quantity\":6}\n{\"InvoiceNo\":0,\"Quantity\":0}\n"
	if string(data) != want {
		t.Errorf("encodeNDJSON() = %q, want %q", data, want)
	}
}

func TestProjectedRowSchemaMatchesStruct(t *testing.T) {
	inferred, err := bigquery.InferSchema(ProjectedRow{})
	if err != nil {
		t.Fatalf("InferSchema() error = %v", err)
	}
	if len(inferred) != len(ProjectedRowSchema) {
		t.Fatalf("inferred %d fields, declared %d", len(inferred), len(ProjectedRowSchema))
	}
	for i, f := range inferred {
		want := ProjectedRowSchema[i]
		if f.Name != want.Name || f.Type != want.Type {
			t.Errorf("field %d = %s %s, want %s %s", i, f.Name, f.Type, want.Name, want.Type)
		}
	}
}

func TestTableRef(t *testing.T) {
	ref := TableRef{ProjectID: "deep-dive-459409", DatasetID: "ads_data", TableID: "ads_data_table"}

	if got := ref.String(); got != "deep-dive-459409.ads_data.ads_data_table" {
		t.Errorf("String() = %q", got)
	}
	if got := ref.quoted(); got != "`deep-dive-459409.ads_data.ads_data_table`" {
		t.Errorf("quoted() = %q", got)
	}
}

func TestAppendRows_EmptyIsNoop(t *testing.T) {
	// No client is needed when there is nothing to write.
	w := &TableWriter{ref: TableRef{ProjectID: "p", DatasetID: "d", TableID: "t"}, chunkSize: 10}
	if err := w.AppendRows(context.Background(), nil); err != nil {
		t.Errorf("AppendRows(nil) error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}
