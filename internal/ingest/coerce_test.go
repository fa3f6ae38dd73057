package ingest

import (
	"errors"
	"testing"

	"github.com/dvloznov/sheet-to-bq/internal/sheets"
)

func TestParseIntOrDefault(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"536365", 536365},
		{"6", 6},
		{"-6", -6},
		{"+6", 6},
		{"  42  ", 42},
		{"007", 7},
		{"3.7", 3},
		{"-3.7", -3},
		{".5", 0},
		{"5.", 5},
		{"1e3", 1000},
		{"3.7e10", 37000000000},
		{"9223372036854775807", 9223372036854775807},
		{"-9223372036854775808", -9223372036854775808},
		{"9223372036854775808", 0},
		{"1e19", 0},
		{"-1e19", 0},
		{"", 0},
		{"   ", 0},
		{"ABC123", 0},
		{"12abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"0x10", 0},
		{"1,000", 0},
		{"1_000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseIntOrDefault(tt.input, 0); got != tt.want {
				t.Errorf("ParseIntOrDefault(%q, 0) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIntOrDefault_CustomDefault(t *testing.T) {
	if got := ParseIntOrDefault("n/a", -1); got != -1 {
		t.Errorf("ParseIntOrDefault(n/a, -1) = %d, want -1", got)
	}
	if got := ParseIntOrDefault("12", -1); got != 12 {
		t.Errorf("ParseIntOrDefault(12, -1) = %d, want 12", got)
	}
}

func TestProjectFirstRow(t *testing.T) {
	tests := []struct {
		name          string
		csv           string
		wantInvoiceNo int64
		wantQuantity  int64
	}{
		{
			name:          "numeric values with extra columns",
			csv:           "InvoiceNo,StockCode,Description,Quantity,Country\n536365,85123A,WHITE HANGING HEART,6,United Kingdom\n536366,22633,HAND WARMER,12,France\n",
			wantInvoiceNo: 536365,
			wantQuantity:  6,
		},
		{
			name:          "non-numeric and empty",
			csv:           "InvoiceNo,Quantity\nABC123,\n",
			wantInvoiceNo: 0,
			wantQuantity:  0,
		},
		{
			name:          "column order reversed",
			csv:           "Quantity,InvoiceNo\n3,99\n",
			wantInvoiceNo: 99,
			wantQuantity:  3,
		},
		{
			name:          "short first row",
			csv:           "InvoiceNo,Country,Quantity\n536365\n",
			wantInvoiceNo: 536365,
			wantQuantity:  0,
		},
		{
			name:          "fractional values truncated",
			csv:           "InvoiceNo,Quantity\n536365.0,2.9\n",
			wantInvoiceNo: 536365,
			wantQuantity:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := sheets.ParseCSV([]byte(tt.csv))
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}

			row, err := ProjectFirstRow(table)
			if err != nil {
				t.Fatalf("ProjectFirstRow() error = %v", err)
			}
			if row.InvoiceNo != tt.wantInvoiceNo || row.Quantity != tt.wantQuantity {
				t.Errorf("ProjectFirstRow() = %+v, want {InvoiceNo:%d Quantity:%d}", *row, tt.wantInvoiceNo, tt.wantQuantity)
			}
		})
	}
}

func TestProjectFirstRow_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		table := &sheets.Table{Header: []string{"InvoiceNo", "StockCode"}, Records: [][]string{{"1", "x"}}}

		_, err := ProjectFirstRow(table)
		var missing *MissingColumnsError
		if !errors.As(err, &missing) {
			t.Fatalf("ProjectFirstRow() error = %v, want MissingColumnsError", err)
		}
		if len(missing.Columns) != 1 || missing.Columns[0] != QuantityColumn {
			t.Errorf("missing columns = %v, want [Quantity]", missing.Columns)
		}
	})

	t.Run("both columns missing", func(t *testing.T) {
		table := &sheets.Table{Header: []string{"Country"}}

		_, err := ProjectFirstRow(table)
		if err == nil || err.Error() != "required columns not found in sheet header: InvoiceNo, Quantity" {
			t.Errorf("ProjectFirstRow() error = %v", err)
		}
	})

	t.Run("no data rows", func(t *testing.T) {
		table := &sheets.Table{Header: []string{"InvoiceNo", "Quantity"}}

		if _, err := ProjectFirstRow(table); !errors.Is(err, sheets.ErrNoRows) {
			t.Errorf("ProjectFirstRow() error = %v, want ErrNoRows", err)
		}
	})
}
