package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

func TestLoaderReadsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopping.csv")
	content := "Customer ID,Age,Gender,Purchase Amount (USD)\n" +
		"1,55,Male,53\n" +
		"2,,Female,64\n" +
		",,,\n" +
		"3,50,Male,abc\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := NewLoader(DefaultExcelConfig(path))
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, loader.SourceID(), ds.Source())
	assert.Contains(t, ds.Source(), "shopping.csv")

	id, err := ds.Column(dataset.ColCustomerID)
	require.NoError(t, err)
	assert.Equal(t, dataset.KindCategorical, id.Kind())

	age, err := ds.Column(dataset.ColAge)
	require.NoError(t, err)
	assert.True(t, age.IsNumeric())
	assert.True(t, age.IsNull(1))

	amount, err := ds.Column(dataset.ColAmount)
	require.NoError(t, err)
	assert.True(t, amount.IsNull(2))
}

func TestLoaderReadsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopping.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Gender", "Age", "Category"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Female", 31, "Shoes"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Male", 44.5, "Bags"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := NewLoader(ExcelConfig{FilePath: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	age, err := ds.Column("Age")
	require.NoError(t, err)
	v, ok := age.Float(1)
	require.True(t, ok)
	assert.Equal(t, 44.5, v)
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader(ExcelConfig{FilePath: filepath.Join(dir, "missing.csv")}).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("Age,Gender\n"), 0o644))
	_, err = NewLoader(ExcelConfig{FilePath: headerOnly}).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrEmptySource)
}

func TestSourceIDChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("A\n1\n"), 0o644))
	loader := NewLoader(ExcelConfig{FilePath: path})
	before := loader.SourceID()

	require.NoError(t, os.WriteFile(path, []byte("A\n1\n2\n"), 0o644))
	assert.NotEqual(t, before, loader.SourceID())
}
