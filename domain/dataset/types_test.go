package dataset

import (
	"testing"

	"shoplens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSmall(t *testing.T) *Dataset {
	t.Helper()
	b, err := NewBuilder("test", []ColumnSpec{
		{Name: "Gender", Kind: KindCategorical},
		{Name: "Age", Kind: KindNumeric},
	})
	require.NoError(t, err)
	require.NoError(t, b.Append([]string{"Female", "18"}))
	require.NoError(t, b.Append([]string{"Male", ""}))
	require.NoError(t, b.Append([]string{"", "42.5"}))
	require.NoError(t, b.Append([]string{"Female", "abc"}))
	require.NoError(t, b.Append([]string{"Male"}))
	return b.Build()
}

func TestBuilderNullsAndCoercion(t *testing.T) {
	b, err := NewBuilder("test", []ColumnSpec{{Name: "Age", Kind: KindNumeric}})
	require.NoError(t, err)
	require.NoError(t, b.Append([]string{"31"}))
	require.NoError(t, b.Append([]string{"n/a"}))
	require.NoError(t, b.Append([]string{"thirty"}))
	assert.Equal(t, map[string]int{"Age": 1}, b.Invalid())

	ds := b.Build()
	col, err := ds.Column("Age")
	require.NoError(t, err)

	f, ok := col.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 31.0, f)
	assert.True(t, col.IsNull(1))
	assert.True(t, col.IsNull(2))
}

func TestBuilderRejectsBadLayouts(t *testing.T) {
	_, err := NewBuilder("x", nil)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = NewBuilder("x", []ColumnSpec{{Name: "A"}, {Name: "A"}})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	b, err := NewBuilder("x", []ColumnSpec{{Name: "A"}})
	require.NoError(t, err)
	assert.Error(t, b.Append([]string{"1", "2"}))
}

func TestViewDistinctFirstSeen(t *testing.T) {
	ds := buildSmall(t)

	genders, err := ds.All().Distinct("Gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"Female", "Male"}, genders)

	ages, err := ds.All().Distinct("Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"18", "42.5"}, ages)

	_, err = ds.All().Distinct("Colour")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestViewNumericBounds(t *testing.T) {
	ds := buildSmall(t)

	min, max, ok, err := ds.All().NumericBounds("Age")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 18.0, min)
	assert.Equal(t, 42.5, max)

	_, _, _, err = ds.All().NumericBounds("Gender")
	assert.ErrorIs(t, err, core.ErrColumnKind)

	_, _, ok, err = NewView(ds, []int{1}).NumericBounds("Age")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestViewRowsIsACopy(t *testing.T) {
	ds := buildSmall(t)
	v := ds.All()
	rows := v.Rows()
	rows[0] = 99
	assert.Equal(t, 0, v.Row(0))
}

func TestZeroViewIsEmpty(t *testing.T) {
	var v View
	assert.Equal(t, 0, v.Len())
	_, err := v.Column("Age")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.Empty(t, Describe(v))
}

func TestInferSpecsKnownKindsWin(t *testing.T) {
	headers := []string{"Customer ID", "Age", "Gender"}
	rows := [][]string{{"1", "55", "Male"}, {"2", "", "Female"}}

	specs := InferSpecs(headers, rows, []ColumnSpec{{Name: ColCustomerID, Kind: KindCategorical}})
	assert.Equal(t, []ColumnSpec{
		{Name: "Customer ID", Kind: KindCategorical},
		{Name: "Age", Kind: KindNumeric},
		{Name: "Gender", Kind: KindCategorical},
	}, specs)
}

func TestDescribe(t *testing.T) {
	ds := buildSmall(t)
	infos := Describe(ds.All())
	require.Len(t, infos, 2)

	assert.Equal(t, "Gender", infos[0].Name)
	assert.Equal(t, 1, infos[0].Nulls)
	assert.Equal(t, []string{"Female", "Male"}, infos[0].Options)

	assert.Equal(t, KindNumeric, infos[1].Kind)
	require.NotNil(t, infos[1].Min)
	assert.Equal(t, 18.0, *infos[1].Min)
	assert.Equal(t, 42.5, *infos[1].Max)
	assert.Equal(t, 3, infos[1].Nulls)
}
