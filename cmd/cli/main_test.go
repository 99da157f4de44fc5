package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestGenerateThenViews(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	csvPath := filepath.Join(t.TempDir(), "shopping.csv")
	run(t, newGenerateCmd(), "--rows", "50", "--seed", "3", "--out", csvPath)

	out := run(t, newViewsCmd(), "--source", csvPath, "--view", "category_counts", "--select", "Gender=Female")
	var snap struct {
		TotalRows    int `json:"total_rows"`
		FilteredRows int `json:"filtered_rows"`
		Views        []struct {
			Name string `json:"name"`
		} `json:"views"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 50, snap.TotalRows)
	assert.Less(t, snap.FilteredRows, 50)
	require.Len(t, snap.Views, 1)
	assert.Equal(t, "category_counts", snap.Views[0].Name)

	out = run(t, newViewsCmd(), "--source", csvPath, "--range", "Age=18:40", "--format", "markdown")
	assert.Contains(t, out, "- Age in [18, 40]")

	out = run(t, newViewsCmd(), "--source", csvPath, "--view", "payment_counts", "--format", "csv")
	assert.True(t, strings.HasPrefix(out, "# payment_counts\nvalue,count\n"))
}

func TestGenerateIntoSQLite(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dsn := filepath.Join(t.TempDir(), "shop.db")
	run(t, newGenerateCmd(), "--rows", "20", "--driver", "sqlite3", "--dsn", dsn, "--table", "shopping")

	out := run(t, newSchemaCmd(), "--driver", "sqlite3", "--dsn", dsn, "--table", "shopping")
	assert.Contains(t, out, "Purchase Amount (USD)")
	assert.Contains(t, out, "numeric")
}

func TestViewsRejectsBadFlags(t *testing.T) {
	cmd := newViewsCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", "x.csv", "--range", "Age"})
	assert.Error(t, cmd.Execute())
}

func TestLayoutCmd(t *testing.T) {
	out := run(t, newLayoutCmd())
	assert.Contains(t, out, "name: purchase_flow")
}
