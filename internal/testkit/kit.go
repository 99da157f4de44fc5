package testkit

import (
	"context"
	"fmt"
	"sync/atomic"

	"shoplens/domain/dataset"
	"shoplens/ports"
)

// TestKit provides testing utilities and fixtures backed by generated
// shopping data
type TestKit struct {
	config  ShoppingGeneratorConfig
	headers []string
	rows    [][]string
}

// NewTestKit creates a test kit with the default generator settings
func NewTestKit() *TestKit {
	return NewTestKitWithConfig(DefaultShoppingConfig())
}

// NewTestKitWithConfig creates a test kit with explicit generator settings
func NewTestKitWithConfig(config ShoppingGeneratorConfig) *TestKit {
	gen := NewShoppingDataGenerator(config)
	return &TestKit{
		config:  config,
		headers: dataset.ShoppingHeaders(),
		rows:    gen.GenerateRows(),
	}
}

// Headers returns the generated column names
func (k *TestKit) Headers() []string {
	return append([]string(nil), k.headers...)
}

// Rows returns the generated rows
func (k *TestKit) Rows() [][]string {
	return k.rows
}

// Dataset builds a typed dataset from the generated rows
func (k *TestKit) Dataset() (*dataset.Dataset, error) {
	ds, _, err := dataset.FromRows(k.sourceID(), k.headers, k.rows, dataset.ShoppingSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to build generated dataset: %w", err)
	}
	return ds, nil
}

// Loader returns an in-memory loader over the generated rows
func (k *TestKit) Loader() *StaticLoader {
	return NewStaticLoader(k.sourceID(), k.headers, k.rows, dataset.ShoppingSchema())
}

func (k *TestKit) sourceID() string {
	return fmt.Sprintf("generated:%d:%d", k.config.Seed, k.config.Rows)
}

// StaticLoader serves a fixed table from memory and counts how often it was
// loaded
type StaticLoader struct {
	source  string
	headers []string
	rows    [][]string
	known   []dataset.ColumnSpec
	loads   atomic.Int64
}

var _ ports.DatasetLoader = (*StaticLoader)(nil)

// NewStaticLoader creates an in-memory loader
func NewStaticLoader(source string, headers []string, rows [][]string, known []dataset.ColumnSpec) *StaticLoader {
	return &StaticLoader{source: source, headers: headers, rows: rows, known: known}
}

// Load builds the dataset from the stored rows
func (l *StaticLoader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.loads.Add(1)
	ds, _, err := dataset.FromRows(l.source, l.headers, l.rows, l.known)
	return ds, err
}

// SourceID returns the fixed source identifier
func (l *StaticLoader) SourceID() string { return l.source }

// Loads returns the number of Load calls so far
func (l *StaticLoader) Loads() int { return int(l.loads.Load()) }
