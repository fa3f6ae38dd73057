package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"SPREADSHEET_ID", "SHEET_NAME", "SHEETS_HOST",
	"BIGQUERY_PROJECT_ID", "BIGQUERY_DATASET_ID", "BIGQUERY_TABLE_ID",
	"CHUNK_SIZE", "LOAD_METHOD", "FETCH_TIMEOUT", "SNAPSHOT_BUCKET",
	"LOG_LEVEL", "LOG_FORMAT", "PORT",
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != Default() {
		t.Errorf("Load() = %+v, want %+v", cfg, Default())
	}
	if got, want := cfg.TableRef(), "deep-dive-459409.ads_data.ads_data_table"; got != want {
		t.Errorf("TableRef() = %q, want %q", got, want)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("SHEET_NAME", "orders")
	t.Setenv("BIGQUERY_PROJECT_ID", "proj")
	t.Setenv("BIGQUERY_DATASET_ID", "ds")
	t.Setenv("BIGQUERY_TABLE_ID", "tbl")
	t.Setenv("CHUNK_SIZE", "10")
	t.Setenv("LOAD_METHOD", "stream")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("SNAPSHOT_BUCKET", "raw-sheets")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SpreadsheetID != "sheet-123" || cfg.SheetName != "orders" {
		t.Errorf("unexpected sheet settings: %+v", cfg)
	}
	if cfg.TableRef() != "proj.ds.tbl" {
		t.Errorf("TableRef() = %q", cfg.TableRef())
	}
	if cfg.ChunkSize != 10 {
		t.Errorf("ChunkSize = %d, want 10", cfg.ChunkSize)
	}
	if cfg.LoadMethod != LoadMethodStream {
		t.Errorf("LoadMethod = %q, want %q", cfg.LoadMethod, LoadMethodStream)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %s, want 5s", cfg.FetchTimeout)
	}
	if cfg.SnapshotBucket != "raw-sheets" {
		t.Errorf("SnapshotBucket = %q", cfg.SnapshotBucket)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"non-numeric chunk size", "CHUNK_SIZE", "lots", "config load"},
		{"zero chunk size", "CHUNK_SIZE", "0", "CHUNK_SIZE"},
		{"unknown load method", "LOAD_METHOD", "upsert", "LOAD_METHOD"},
		{"negative timeout", "FETCH_TIMEOUT", "-1s", "FETCH_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := Default()
	cfg.DatasetID = "  "

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "BIGQUERY_DATASET_ID") {
		t.Errorf("Validate() error = %v, want BIGQUERY_DATASET_ID error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SHEET_NAME=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SHEET_NAME") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SheetName != "from-dotenv" {
		t.Errorf("SheetName = %q, want from-dotenv", cfg.SheetName)
	}
}
