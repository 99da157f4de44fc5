package views

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreJSON(t *testing.T) {
	raw, err := json.Marshal([]Score{0.5, NaNScore(), Score(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, `[0.5,null,null]`, string(raw))

	var back []Score
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 0.5, float64(back[0]))
	assert.False(t, back[1].Valid())
}

func TestGroupedMeansMaps(t *testing.T) {
	g := GroupedMeans{Groups: []GroupMean{
		{Key: []string{"F", "Winter"}, Mean: 12, Count: 2},
		{Key: []string{"M", "Winter"}, Empty: true},
	}}
	assert.Equal(t, map[string]float64{"F | Winter": 12}, g.Means())
	assert.Equal(t, map[string]float64{"F | Winter": 12, "M | Winter": 0}, g.ZeroFilled())
}

func TestAssociationMatrixAtUnknownColumn(t *testing.T) {
	m := AssociationMatrix{Columns: []string{"A"}, Values: [][]Score{{1}}}
	s, ok := m.At("A", "B")
	assert.False(t, ok)
	assert.False(t, s.Valid())
}
