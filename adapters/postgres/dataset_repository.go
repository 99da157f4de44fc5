package postgres

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/ports"
)

// identifierPattern restricts table and column names interpolated into SQL
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ ()]*$`)

// Open connects to a database using a driver registered by this package
// ("postgres" or "sqlite3")
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, core.NewConfigurationError("driver", fmt.Sprintf("unsupported driver %q", driver))
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// datasetRepository loads a whole table as a dataset
type datasetRepository struct {
	db    *sqlx.DB
	dsn   string
	table string
	known []dataset.ColumnSpec
}

// NewDatasetRepository creates a table-backed dataset loader. dsn only
// contributes to SourceID.
func NewDatasetRepository(db *sqlx.DB, dsn, table string, known []dataset.ColumnSpec) (ports.DatasetLoader, error) {
	if !identifierPattern.MatchString(table) {
		return nil, core.NewConfigurationError("table", fmt.Sprintf("invalid table name %q", table))
	}
	return &datasetRepository{db: db, dsn: dsn, table: table, known: known}, nil
}

// Load reads every row of the table. Column kinds come from the known specs
// and are inferred for anything else.
func (r *datasetRepository) Load(ctx context.Context) (*dataset.Dataset, error) {
	start := time.Now()
	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(r.table))

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", r.table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", r.table, err)
	}

	var records [][]string
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(records)+1, r.table, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellText(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: table %s", core.ErrEmptySource, r.table)
	}

	ds, invalid, err := dataset.FromRows(r.SourceID(), headers, records, r.known)
	if err != nil {
		return nil, err
	}
	for col, n := range invalid {
		log.Printf("[DatasetRepository] Column %q: %d non-numeric cells treated as null", col, n)
	}
	log.Printf("[DatasetRepository] Loaded %d rows from %s in %s", ds.Len(), r.table, time.Since(start))
	return ds, nil
}

// SourceID identifies the database and table without exposing credentials
func (r *datasetRepository) SourceID() string {
	return fmt.Sprintf("sql:%s:%s:%s", r.db.DriverName(), core.NewHash([]byte(r.dsn)).Short(), r.table)
}

// ImportRows creates table with one column per spec and inserts rows. Numeric
// columns are stored as DOUBLE PRECISION/REAL and null cells as NULL.
func ImportRows(ctx context.Context, db *sqlx.DB, table string, specs []dataset.ColumnSpec, rows [][]string) error {
	if !identifierPattern.MatchString(table) {
		return core.NewConfigurationError("table", fmt.Sprintf("invalid table name %q", table))
	}
	if len(specs) == 0 {
		return core.NewConfigurationError("columns", "at least one column is required")
	}

	numericType := "DOUBLE PRECISION"
	if db.DriverName() == "sqlite3" {
		numericType = "REAL"
	}

	cols := make([]string, len(specs))
	defs := make([]string, len(specs))
	marks := make([]string, len(specs))
	for i, spec := range specs {
		if !identifierPattern.MatchString(spec.Name) {
			return core.NewConfigurationError("columns", fmt.Sprintf("invalid column name %q", spec.Name))
		}
		cols[i] = quoteIdent(spec.Name)
		colType := "TEXT"
		if spec.Kind == dataset.KindNumeric {
			colType = numericType
		}
		defs[i] = cols[i] + " " + colType
		marks[i] = "?"
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	insert := db.Rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for n, row := range rows {
		args := make([]interface{}, len(specs))
		for i, spec := range specs {
			raw := ""
			if i < len(row) {
				raw = strings.TrimSpace(row[i])
			}
			args[i] = cellArg(spec, raw)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	log.Printf("[DatasetRepository] Imported %d rows into %s", len(rows), table)
	return nil
}

func cellArg(spec dataset.ColumnSpec, raw string) interface{} {
	if dataset.IsNullToken(raw) {
		return nil
	}
	if spec.Kind == dataset.KindNumeric {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return f
	}
	return raw
}

// cellText renders a scanned driver value as raw cell text
func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return dataset.FormatNumber(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
