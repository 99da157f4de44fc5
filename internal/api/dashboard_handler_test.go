package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/adapters/excel"
	"shoplens/app"
	"shoplens/domain/dataset"
	datacache "shoplens/internal/dataset"
	"shoplens/internal/testkit"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kit := testkit.NewTestKitWithConfig(testkit.ShoppingGeneratorConfig{Rows: 120, Seed: 8})
	svc := app.NewDashboardService(kit.Loader(), datacache.NewCache(1), nil, 2)

	r := gin.New()
	NewDashboardHandler(svc).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetSchema(t *testing.T) {
	w := do(newRouter(t), http.MethodGet, "/api/schema", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Columns []dataset.ColumnInfo `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Columns, len(dataset.ShoppingSchema()))
}

func TestGetLayout(t *testing.T) {
	w := do(newRouter(t), http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"purchase_flow"`)
}

func TestComputeViews(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/views", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all app.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 120, all.FilteredRows)

	body, _ := json.Marshal(map[string]interface{}{
		"ranges": map[string]interface{}{dataset.ColAge: map[string]float64{"low": 18, "high": 30}},
	})
	w = do(r, http.MethodPost, "/api/views", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	var some app.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &some))
	assert.Less(t, some.FilteredRows, all.FilteredRows)
	assert.Len(t, some.Predicates, 1)
}

func TestComputeViewsErrors(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/views", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")

	w = do(r, http.MethodPost, "/api/views", `{"selected":{"Colour":["Red"]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "COLUMN_NOT_FOUND")

	w = do(r, http.MethodPost, "/api/views", `{"ranges":{"Age":{"low":50,"high":10}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIGURATION_ERROR")
}

func TestComputeViewsSourceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	missing := filepath.Join(t.TempDir(), "missing.csv")
	svc := app.NewDashboardService(excel.NewLoader(excel.DefaultExcelConfig(missing)), datacache.NewCache(1), nil, 1)
	r := gin.New()
	NewDashboardHandler(svc).RegisterRoutes(r)

	w := do(r, http.MethodPost, "/api/views", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SOURCE_UNAVAILABLE")

	w = do(r, http.MethodGet, "/api/schema", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestComputeView(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/views/category_counts", `{"selected":{"Gender":["Male"]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var snap app.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Views, 1)
	assert.Equal(t, "category_counts", snap.Views[0].Name)

	w = do(r, http.MethodPost, "/api/views/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReport(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("# Customer Shopping Behaviour")))

	w = do(r, http.MethodPost, "/api/report?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")
}
