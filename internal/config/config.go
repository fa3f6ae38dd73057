// Package config holds the settings of a sheet-to-BigQuery run.
//
// Every field has a default equal to the spreadsheet and table the function
// was originally deployed against, so an empty environment reproduces that
// deployment. Values are read from the process environment; a local .env file
// can be loaded first with LoadDotEnv.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load methods accepted in LOAD_METHOD.
const (
	// LoadMethodJob appends through a BigQuery load job with WRITE_APPEND.
	LoadMethodJob = "load"
	// LoadMethodStream appends through the streaming inserter.
	LoadMethodStream = "stream"
)

// Config is the injected run configuration.
type Config struct {
	SpreadsheetID string `envconfig:"SPREADSHEET_ID" default:"1itUidavSQf8OjGtupTXIPpjRrrkMToAuwQBISqR2zoI"`
	SheetName     string `envconfig:"SHEET_NAME" default:"data"`
	SheetsHost    string `envconfig:"SHEETS_HOST" default:"https://docs.google.com"`

	ProjectID  string `envconfig:"BIGQUERY_PROJECT_ID" default:"deep-dive-459409"`
	DatasetID  string `envconfig:"BIGQUERY_DATASET_ID" default:"ads_data"`
	TableID    string `envconfig:"BIGQUERY_TABLE_ID" default:"ads_data_table"`
	ChunkSize  int    `envconfig:"CHUNK_SIZE" default:"100000"`
	LoadMethod string `envconfig:"LOAD_METHOD" default:"load"`

	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`

	// SnapshotBucket enables raw CSV snapshots when set.
	SnapshotBucket string `envconfig:"SNAPSHOT_BUCKET"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	Port      string `envconfig:"PORT" default:"8080"`
}

// Default returns the configuration an empty environment would produce.
func Default() Config {
	return Config{
		SpreadsheetID: "1itUidavSQf8OjGtupTXIPpjRrrkMToAuwQBISqR2zoI",
		SheetName:     "data",
		SheetsHost:    "https://docs.google.com",
		ProjectID:     "deep-dive-459409",
		DatasetID:     "ads_data",
		TableID:       "ads_data_table",
		ChunkSize:     100000,
		LoadMethod:    LoadMethodJob,
		FetchTimeout:  30 * time.Second,
		LogLevel:      "info",
		LogFormat:     "console",
		Port:          "8080",
	}
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set in the environment win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("LoadDotEnv: %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"SPREADSHEET_ID", c.SpreadsheetID},
		{"SHEET_NAME", c.SheetName},
		{"SHEETS_HOST", c.SheetsHost},
		{"BIGQUERY_PROJECT_ID", c.ProjectID},
		{"BIGQUERY_DATASET_ID", c.DatasetID},
		{"BIGQUERY_TABLE_ID", c.TableID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s must not be empty", r.name)
		}
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}

	switch c.LoadMethod {
	case LoadMethodJob, LoadMethodStream:
	default:
		return fmt.Errorf("LOAD_METHOD must be %q or %q, got %q", LoadMethodJob, LoadMethodStream, c.LoadMethod)
	}

	return nil
}

// TableRef returns the fully qualified destination table, project.dataset.table.
func (c Config) TableRef() string {
	return fmt.Sprintf("%s.%s.%s", c.ProjectID, c.DatasetID, c.TableID)
}
