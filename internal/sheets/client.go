package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHost serves the public gviz CSV export.
const DefaultHost = "https://docs.google.com"

var (
	// ErrEmptySheet is returned when the export body holds no CSV at all.
	ErrEmptySheet = errors.New("no columns to parse from sheet")

	// ErrNoRows is returned when the sheet has a header but no data rows.
	ErrNoRows = errors.New("sheet has no data rows")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV export. The first CSV record becomes Header.
type Table struct {
	Header  []string
	Records [][]string

	// Raw is the response body exactly as received.
	Raw []byte
}

// Client fetches data from public Google Sheets using the gviz CSV export
type Client struct {
	host          string
	spreadsheetID string
	httpClient    *http.Client
}

func NewClient(host, spreadsheetID string, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		host:          strings.TrimRight(host, "/"),
		spreadsheetID: spreadsheetID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExportURL returns the CSV export URL for a sheet tab addressed by name.
func (c *Client) ExportURL(sheetName string) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.host, url.PathEscape(c.spreadsheetID), url.QueryEscape(sheetName))
}

// FetchSheet downloads a sheet tab as CSV and parses it.
func (c *Client) FetchSheet(ctx context.Context, sheetName string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(sheetName), nil)
	if err != nil {
		return nil, fmt.Errorf("FetchSheet: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchSheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FetchSheet: unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("FetchSheet: reading body: %w", err)
	}

	table, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("FetchSheet: %w", err)
	}
	return table, nil
}

// ParseCSV parses CSV text into a Table. Blank lines are skipped and rows may
// be shorter or longer than the header.
func ParseCSV(data []byte) (*Table, error) {
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(trimmed)) == 0 {
		return nil, ErrEmptySheet
	}

	reader := csv.NewReader(bytes.NewReader(trimmed))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	return &Table{
		Header:  header,
		Records: records[1:],
		Raw:     data,
	}, nil
}

// FirstRecord returns the first data row.
func (t *Table) FirstRecord() ([]string, error) {
	if len(t.Records) == 0 {
		return nil, ErrNoRows
	}
	return t.Records[0], nil
}

// ColumnIndex returns the position of the first header equal to name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}
