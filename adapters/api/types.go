package api

import (
	"time"

	"shoplens/domain/dataset"
)

// JSONSource describes a JSON document holding an array of row objects,
// served over HTTP(S) or stored on disk
type JSONSource struct {
	// Location is an http(s) URL or a file path
	Location string `json:"location" yaml:"location"`
	// DataPath is a gjson path to the row array; empty means the document root
	DataPath string            `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timeout  time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Known pins column kinds instead of inferring them
	Known []dataset.ColumnSpec `json:"known,omitempty" yaml:"known,omitempty"`
}

// APIData is the flattened result of a fetch: column names in first-seen
// order and one raw text cell per column for each record
type APIData struct {
	Headers   []string
	Rows      [][]string
	FetchedAt time.Time
	Bytes     int
}
