package excel

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"shoplens/domain/dataset"
)

// Loader loads a dataset from a CSV or XLSX file
type Loader struct {
	reader *DataReader
	config ExcelConfig
}

// NewLoader creates a file-backed dataset loader
func NewLoader(config ExcelConfig) *Loader {
	return &Loader{reader: NewDataReader(config), config: config}
}

// Load reads the file and builds the dataset. Numeric cells that fail to
// parse are stored as nulls and logged per column.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	data, err := l.reader.ReadData(ctx)
	if err != nil {
		return nil, err
	}

	ds, invalid, err := dataset.FromRows(l.SourceID(), data.Headers, data.Rows, l.config.Known)
	if err != nil {
		return nil, fmt.Errorf("building dataset from %s: %w", l.config.FilePath, err)
	}
	for col, n := range invalid {
		log.Printf("[DataReader] Column %q: %d non-numeric cells treated as null", col, n)
	}
	return ds, nil
}

// SourceID identifies the file by absolute path, size and modification time
func (l *Loader) SourceID() string {
	path := l.config.FilePath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return "file:" + path
	}
	return fmt.Sprintf("file:%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
}
