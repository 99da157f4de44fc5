package excel

import (
	"shoplens/domain/dataset"
)

// ExcelConfig holds configuration for a file data source
type ExcelConfig struct {
	FilePath string `json:"file_path" yaml:"file_path"`
	// Sheet is the worksheet read from XLSX files
	Sheet string `json:"sheet" yaml:"sheet"`
	// Known pins column kinds instead of inferring them from the data
	Known []dataset.ColumnSpec `json:"known,omitempty" yaml:"known,omitempty"`
}

// DefaultExcelConfig returns the shopping dataset defaults
func DefaultExcelConfig(path string) ExcelConfig {
	return ExcelConfig{
		FilePath: path,
		Sheet:    "Sheet1",
		Known:    dataset.ShoppingSchema(),
	}
}
