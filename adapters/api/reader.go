package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

// APIReader fetches a JSON row array from a URL or file
type APIReader struct {
	config     JSONSource
	httpClient *http.Client
}

// NewAPIReader creates a new reader for a JSON source
func NewAPIReader(config JSONSource) *APIReader {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &APIReader{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (r *APIReader) isRemote() bool {
	loc := strings.ToLower(r.config.Location)
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// FetchData retrieves the document and flattens the records at DataPath
func (r *APIReader) FetchData(ctx context.Context) (*APIData, error) {
	startTime := time.Now()

	body, err := r.readBody(ctx)
	if err != nil {
		return nil, err
	}

	data, err := r.parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	data.FetchedAt = startTime
	data.Bytes = len(body)

	log.Printf("[APIReader] Fetched %d records (%d columns) from %s in %s",
		len(data.Rows), len(data.Headers), r.config.Location, time.Since(startTime))
	return data, nil
}

func (r *APIReader) readBody(ctx context.Context) ([]byte, error) {
	if !r.isRemote() {
		body, err := os.ReadFile(r.config.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", r.config.Location, err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// parseResponse extracts the record array at DataPath
func (r *APIReader) parseResponse(body []byte) (*APIData, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	dataPath := r.config.DataPath
	if dataPath == "" {
		dataPath = "@this"
	}
	dataResult := gjson.GetBytes(body, dataPath)
	if !dataResult.Exists() {
		return nil, fmt.Errorf("data path '%s' not found in response", r.config.DataPath)
	}
	if !dataResult.IsArray() {
		return nil, fmt.Errorf("data path '%s' is not an array", r.config.DataPath)
	}

	index := make(map[string]int)
	data := &APIData{Headers: []string{}}
	var records []map[string]string

	var recordErr error
	dataResult.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			recordErr = fmt.Errorf("record %d is not an object", len(records)+1)
			return false
		}
		cells := make(map[string]string)
		record.ForEach(func(key, value gjson.Result) bool {
			name := strings.TrimSpace(key.String())
			if _, seen := index[name]; !seen {
				index[name] = len(data.Headers)
				data.Headers = append(data.Headers, name)
			}
			cells[name] = cellText(value)
			return true
		})
		records = append(records, cells)
		return true
	})
	if recordErr != nil {
		return nil, recordErr
	}

	data.Rows = make([][]string, len(records))
	for i, cells := range records {
		row := make([]string, len(data.Headers))
		for name, val := range cells {
			row[index[name]] = val
		}
		data.Rows[i] = row
	}
	return data, nil
}

// cellText renders a JSON scalar as raw cell text; nested values keep their
// JSON encoding
func cellText(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return dataset.FormatNumber(value.Float())
	case gjson.True, gjson.False:
		return value.String()
	case gjson.String:
		return value.String()
	default:
		return value.Raw
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Loader adapts an APIReader to the dataset loader port
type Loader struct {
	reader *APIReader
	config JSONSource
}

// NewLoader creates a JSON-backed dataset loader
func NewLoader(config JSONSource) *Loader {
	return &Loader{reader: NewAPIReader(config), config: config}
}

// Load fetches the records and builds the dataset
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	data, err := l.reader.FetchData(ctx)
	if err != nil {
		return nil, err
	}
	if len(data.Rows) == 0 || len(data.Headers) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptySource, l.config.Location)
	}

	ds, invalid, err := dataset.FromRows(l.SourceID(), data.Headers, data.Rows, l.config.Known)
	if err != nil {
		return nil, err
	}
	for col, n := range invalid {
		log.Printf("[APIReader] Column %q: %d non-numeric cells treated as null", col, n)
	}
	return ds, nil
}

// SourceID identifies the document location and data path. Files also
// contribute their size and modification time.
func (l *Loader) SourceID() string {
	id := "json:" + l.config.Location
	if !l.reader.isRemote() {
		path := l.config.Location
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		id = "json:" + path
		if info, err := os.Stat(path); err == nil {
			id = fmt.Sprintf("%s:%d:%d", id, info.Size(), info.ModTime().UnixNano())
		}
	}
	if l.config.DataPath != "" {
		id += "#" + l.config.DataPath
	}
	return id
}
