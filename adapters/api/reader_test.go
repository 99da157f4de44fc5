package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

const payload = `{
  "meta": {"count": 3},
  "data": {"rows": [
    {"Customer ID": 1, "Age": 55, "Gender": "Male", "Promo": true},
    {"Customer ID": 2, "Age": null, "Gender": "Female"},
    {"Customer ID": 3, "Age": 19.5, "Gender": "Male", "Tags": ["a"]}
  ]}
}`

func TestLoaderFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	loader := NewLoader(JSONSource{
		Location: srv.URL,
		DataPath: "data.rows",
		Headers:  map[string]string{"X-API-Key": "secret"},
		Known:    dataset.ShoppingSchema(),
	})
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []dataset.ColumnSpec{
		{Name: "Customer ID", Kind: dataset.KindCategorical},
		{Name: "Age", Kind: dataset.KindNumeric},
		{Name: "Gender", Kind: dataset.KindCategorical},
		{Name: "Promo", Kind: dataset.KindCategorical},
		{Name: "Tags", Kind: dataset.KindCategorical},
	}, ds.Specs())
	assert.Equal(t, "json:"+srv.URL+"#data.rows", loader.SourceID())

	age, err := ds.Column("Age")
	require.NoError(t, err)
	assert.True(t, age.IsNull(1))
	v, ok := age.Float(2)
	require.True(t, ok)
	assert.Equal(t, 19.5, v)

	promo, err := ds.Column("Promo")
	require.NoError(t, err)
	text, ok := promo.Text(0)
	require.True(t, ok)
	assert.Equal(t, "true", text)
	assert.True(t, promo.IsNull(1))
}

func TestLoaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Gender":"Female","Age":30}]`), 0o644))

	ds, err := NewLoader(JSONSource{Location: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err := NewLoader(JSONSource{Location: write("empty.json", `[]`)}).Load(context.Background())
	assert.ErrorIs(t, err, core.ErrEmptySource)

	_, err = NewLoader(JSONSource{Location: write("bad.json", `{nope`)}).Load(context.Background())
	assert.Error(t, err)

	_, err = NewLoader(JSONSource{Location: write("obj.json", `{"rows": 1}`), DataPath: "rows"}).Load(context.Background())
	assert.Error(t, err)

	_, err = NewLoader(JSONSource{Location: write("scalars.json", `[1, 2]`)}).Load(context.Background())
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	_, err = NewLoader(JSONSource{Location: srv.URL}).Load(context.Background())
	assert.Error(t, err)
}
