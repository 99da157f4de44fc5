package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/domain/filter"
	"shoplens/internal"
	datacache "shoplens/internal/dataset"
	"shoplens/internal/config"
	"shoplens/internal/errors"
	"shoplens/ports"
)

// DashboardService runs one interaction cycle: load (cached), filter once,
// then compute every view of the layout over the same filtered rows
type DashboardService struct {
	loader  ports.DatasetLoader
	cache   *datacache.Cache
	layout  *config.Layout
	workers int
	logger  *internal.Logger
}

// ViewResult is the outcome of one view. A failing view carries its error and
// does not abort the rest of the cycle.
type ViewResult struct {
	Name       string      `json:"name"`
	Title      string      `json:"title,omitempty"`
	Kind       string      `json:"kind"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorCode  string      `json:"error_code,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

// Snapshot is the complete output of one cycle
type Snapshot struct {
	ID           core.SnapshotID        `json:"id"`
	GeneratedAt  core.Timestamp         `json:"generated_at"`
	Title        string                 `json:"title"`
	Source       string                 `json:"source"`
	Fingerprint  core.Hash              `json:"fingerprint"`
	TotalRows    int                    `json:"total_rows"`
	FilteredRows int                    `json:"filtered_rows"`
	Predicates   []filter.PredicateInfo `json:"predicates"`
	Views        []ViewResult           `json:"views"`
	RuntimeMs    int64                  `json:"runtime_ms"`
}

// View returns the result of a named view
func (s *Snapshot) View(name string) (ViewResult, bool) {
	for _, v := range s.Views {
		if v.Name == name {
			return v, true
		}
	}
	return ViewResult{}, false
}

// Failed lists the names of views that returned an error
func (s *Snapshot) Failed() []string {
	var names []string
	for _, v := range s.Views {
		if v.Error != "" {
			names = append(names, v.Name)
		}
	}
	return names
}

// NewDashboardService creates a dashboard service. workers <= 0 computes
// views one at a time.
func NewDashboardService(loader ports.DatasetLoader, cache *datacache.Cache, layout *config.Layout, workers int) *DashboardService {
	if workers <= 0 {
		workers = 1
	}
	if cache == nil {
		cache = datacache.NewCache(datacache.DefaultMaxEntries)
	}
	if layout == nil {
		layout = config.DefaultLayout()
	}
	return &DashboardService{
		loader:  loader,
		cache:   cache,
		layout:  layout,
		workers: workers,
		logger:  internal.DefaultLogger,
	}
}

// Layout returns the configured views
func (s *DashboardService) Layout() *config.Layout {
	return s.layout
}

// Source returns the identity of the current source
func (s *DashboardService) Source() string {
	return s.loader.SourceID()
}

// Dataset returns the loaded dataset, from cache when the source is unchanged
func (s *DashboardService) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.cache.Get(ctx, s.loader)
	if err != nil {
		// unclassified loader failures (missing file, refused connection) are outages
		if errors.GetCode(err) == errors.CodeUnknown && ctx.Err() == nil {
			return nil, errors.SourceUnavailable(s.loader.SourceID(), err)
		}
		return nil, errors.Wrapf(err, "failed to load dataset from %s", s.loader.SourceID())
	}
	return ds, nil
}

// Schema describes every column of the unfiltered dataset
func (s *DashboardService) Schema(ctx context.Context) ([]dataset.ColumnInfo, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Describe(ds.All()), nil
}

// FilteredView applies the selection to the full dataset
func (s *DashboardService) FilteredView(ctx context.Context, sel filter.Selection) (dataset.View, filter.PredicateSet, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return dataset.View{}, filter.PredicateSet{}, err
	}
	set, err := filter.NewPredicateSet(sel, ds)
	if err != nil {
		return dataset.View{}, filter.PredicateSet{}, err
	}
	view, err := filter.Apply(ds.All(), set)
	if err != nil {
		return dataset.View{}, filter.PredicateSet{}, err
	}
	return view, set, nil
}

// Compute runs a full cycle over every view in the layout
func (s *DashboardService) Compute(ctx context.Context, sel filter.Selection) (*Snapshot, error) {
	return s.compute(ctx, sel, s.layout.Views)
}

// ComputeView runs a cycle for a single named view
func (s *DashboardService) ComputeView(ctx context.Context, sel filter.Selection, name string) (*Snapshot, error) {
	spec, ok := s.layout.View(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrViewNotFound, name)
	}
	return s.compute(ctx, sel, []config.ViewSpec{spec})
}

func (s *DashboardService) compute(ctx context.Context, sel filter.Selection, specs []config.ViewSpec) (*Snapshot, error) {
	start := time.Now()

	view, set, err := s.FilteredView(ctx, sel)
	if err != nil {
		return nil, err
	}

	predicates := set.Infos()
	snapshot := &Snapshot{
		ID:           core.NewSnapshotID(),
		GeneratedAt:  core.Now(),
		Title:        s.layout.Title,
		Source:       view.Dataset().Source(),
		Fingerprint:  selectionFingerprint(s.loader.SourceID(), predicates),
		TotalRows:    view.Dataset().Len(),
		FilteredRows: view.Len(),
		Predicates:   predicates,
		Views:        make([]ViewResult, len(specs)),
	}

	// each worker writes only its own slot
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snapshot.Views[i] = s.runView(view, spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot.RuntimeMs = time.Since(start).Milliseconds()
	if failed := snapshot.Failed(); len(failed) > 0 {
		s.logger.Warn("[DashboardService] %d of %d views failed: %s", len(failed), len(specs), strings.Join(failed, ", "))
	}
	s.logger.Debug("[DashboardService] Snapshot %s: %d/%d rows, %d views in %dms",
		snapshot.ID, snapshot.FilteredRows, snapshot.TotalRows, len(specs), snapshot.RuntimeMs)
	return snapshot, nil
}

func (s *DashboardService) runView(view dataset.View, spec config.ViewSpec) ViewResult {
	start := time.Now()
	result := ViewResult{Name: spec.Name, Title: spec.Title, Kind: spec.Kind}

	data, err := RunView(view, spec)
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		result.ErrorCode = errors.GetCode(err)
		return result
	}
	result.Data = data
	return result
}

// selectionFingerprint identifies a (source, filters) pair so clients can
// tell whether two snapshots were computed from the same inputs
func selectionFingerprint(source string, predicates []filter.PredicateInfo) core.Hash {
	filters := make(map[string]interface{}, len(predicates))
	for _, p := range predicates {
		var b strings.Builder
		b.WriteString(p.Kind)
		if p.Low != nil && p.High != nil {
			b.WriteString(":" + strconv.FormatFloat(*p.Low, 'g', -1, 64))
			b.WriteString(":" + strconv.FormatFloat(*p.High, 'g', -1, 64))
		}
		if len(p.Allowed) > 0 {
			b.WriteString(":" + strings.Join(p.Allowed, "\x1f"))
		}
		if p.AllowNull {
			b.WriteString(":null")
		}
		filters[p.Column] = b.String()
	}
	return core.ComputeSelectionHash(source, filters)
}
