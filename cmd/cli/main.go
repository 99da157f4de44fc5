package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"shoplens/adapters/postgres"
	"shoplens/app"
	"shoplens/domain/dataset"
	"shoplens/domain/filter"
	"shoplens/internal/config"
	"shoplens/internal/container"
	"shoplens/internal/report"
	"shoplens/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "shoplens-cli",
		Short:         "Filter and aggregate shopping behaviour data from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newViewsCmd(),
		newSchemaCmd(),
		newLayoutCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sourceFlags override the environment configuration
type sourceFlags struct {
	path     string
	sheet    string
	dataPath string
	driver   string
	dsn      string
	table    string
	layout   string
	workers  int
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "source", "", "CSV/XLSX/JSON file or JSON URL (default $DATA_SOURCE)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet for XLSX sources")
	cmd.Flags().StringVar(&f.dataPath, "data-path", "", "gjson path to the row array for JSON sources")
	cmd.Flags().StringVar(&f.driver, "driver", "", "SQL driver: postgres or sqlite3")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "SQL connection string")
	cmd.Flags().StringVar(&f.table, "table", "", "SQL table holding the dataset")
	cmd.Flags().StringVar(&f.layout, "layout", "", "YAML layout file (default: built-in shopping layout)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "views computed in parallel")
}

func (f *sourceFlags) container() (*container.Container, error) {
	cfg := config.FromEnv()
	src := &cfg.Source
	overridden := false
	for _, o := range []struct {
		flag  string
		field *string
	}{
		{f.path, &src.Path}, {f.sheet, &src.Sheet}, {f.dataPath, &src.DataPath},
		{f.driver, &src.Driver}, {f.dsn, &src.DSN}, {f.table, &src.Table},
	} {
		if o.flag != "" {
			*o.field = o.flag
			overridden = true
		}
	}
	if overridden {
		src.Kind = config.DetectSourceKind(*src)
	}
	if f.layout != "" {
		cfg.Dashboard.LayoutFile = f.layout
	}
	if f.workers > 0 {
		cfg.Dashboard.Workers = f.workers
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "WARN"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return container.New(cfg)
}

// selectionFlags collect filter widgets from the command line
type selectionFlags struct {
	ranges    []string
	selects   []string
	allowNull []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.ranges, "range", nil, `numeric filter "Column=low:high" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.selects, "select", nil, `categorical filter "Column=a,b" (repeatable)`)
	cmd.Flags().StringArrayVar(&f.allowNull, "allow-null", nil, "keep blank cells of this column (repeatable)")
}

func (f *selectionFlags) selection() (filter.Selection, error) {
	sel := filter.Selection{
		Ranges:    make(map[string]filter.Bounds),
		Selected:  make(map[string][]string),
		AllowNull: f.allowNull,
	}
	for _, r := range f.ranges {
		col, b, err := filter.ParseRange(r)
		if err != nil {
			return filter.Selection{}, err
		}
		sel.Ranges[col] = b
	}
	for _, s := range f.selects {
		col, values, err := filter.ParseMembership(s)
		if err != nil {
			return filter.Selection{}, err
		}
		sel.Selected[col] = values
	}
	return sel, nil
}

func newViewsCmd() *cobra.Command {
	var src sourceFlags
	var sel selectionFlags
	var viewName string
	var format string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Filter the dataset and compute dashboard views",
		Long: `Filter the dataset and compute every view of the layout, or one view.

Example: shoplens-cli views --source shopping.csv --range "Age=18:30" --select "Gender=Female" --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.selection()
			if err != nil {
				return err
			}
			c, err := src.container()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			ctx := cmd.Context()
			var snap *app.Snapshot
			if viewName != "" {
				snap, err = c.Dashboard.ComputeView(ctx, selection, viewName)
			} else {
				snap, err = c.Dashboard.Compute(ctx, selection)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, snap)
			case "markdown", "md":
				_, err := io.WriteString(out, report.Markdown(snap))
				return err
			case "csv":
				for i, v := range snap.Views {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "# %s\n", v.Name)
					if err := report.WriteCSV(out, v); err != nil {
						return err
					}
				}
				return nil
			}
			return fmt.Errorf("unknown format %q (json, markdown, csv)", format)
		},
	}

	src.register(cmd)
	sel.register(cmd)
	cmd.Flags().StringVar(&viewName, "view", "", "compute only this view")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, markdown or csv")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var src sourceFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the columns of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := src.container()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			columns, err := c.Dashboard.Schema(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), columns)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND\tDISTINCT\tNULLS\tRANGE")
			for _, col := range columns {
				rng := "-"
				if col.Min != nil && col.Max != nil {
					rng = fmt.Sprintf("%s..%s", dataset.FormatNumber(*col.Min), dataset.FormatNumber(*col.Max))
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", col.Name, col.Kind, col.Distinct, col.Nulls, rng)
			}
			return w.Flush()
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newLayoutCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the dashboard layout as YAML",
		Long:  "Print the built-in layout, or validate and print a layout file. The output is a starting point for LAYOUT_FILE.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := config.LoadLayout(path)
			if err != nil {
				return err
			}
			data, err := layout.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "layout file to validate")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var rows int
	var seed int64
	var nullRate float64
	var out string
	var driver, dsn, table string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic shopping data",
		Long: `Generate a synthetic shopping behaviour table as CSV, or import it into a database.

Example: shoplens-cli generate --rows 3900 --out shopping.csv
Example: shoplens-cli generate --driver sqlite3 --dsn shop.db --table shopping`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genConfig := testkit.ShoppingGeneratorConfig{Rows: rows, Seed: seed, NullRate: nullRate}
			if rows <= 0 {
				return fmt.Errorf("--rows must be positive")
			}

			if driver != "" {
				db, err := postgres.Open(driver, dsn)
				if err != nil {
					return err
				}
				defer db.Close()
				generated := testkit.NewShoppingDataGenerator(genConfig).GenerateRows()
				if err := postgres.ImportRows(cmd.Context(), db, table, dataset.ShoppingSchema(), generated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d rows into %s\n", len(generated), table)
				return nil
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := testkit.NewShoppingDataGenerator(genConfig).WriteCSV(w); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", rows, out)
			}
			return nil
		},
	}

	defaults := testkit.DefaultShoppingConfig()
	cmd.Flags().IntVar(&rows, "rows", defaults.Rows, "number of rows")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "random seed")
	cmd.Flags().Float64Var(&nullRate, "null-rate", 0, "share of optional cells left blank")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "CSV output file")
	cmd.Flags().StringVar(&driver, "driver", "", "import into a database instead: postgres or sqlite3")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQL connection string")
	cmd.Flags().StringVar(&table, "table", "shopping", "SQL table to create and fill")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
