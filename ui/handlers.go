package ui

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shoplens/app"
	"shoplens/domain/dataset"
	"shoplens/domain/filter"
	apperrors "shoplens/internal/errors"
	"shoplens/internal/report"
)

// pageData is what the dashboard template renders
type pageData struct {
	Title     string
	Source    string
	Columns   []dataset.ColumnInfo
	Selection filter.Selection
	Snapshot  *app.Snapshot
	Query     string
	Error     string
	ErrorCode string
}

// handleIndex renders the sidebar and every view for the current form state
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, sel, ok := a.prepare(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	snap, err := a.dashboard.Compute(r.Context(), sel)
	if err != nil {
		data.Error = err.Error()
		data.ErrorCode = apperrors.GetCode(err)
		status = apperrors.HTTPStatus(err)
	} else {
		data.Snapshot = snap
	}
	if isHTMX(r) && data.Snapshot != nil {
		a.renderTemplate(w, "views", data.Snapshot)
		return
	}
	a.renderTemplateStatus(w, status, "dashboard.html", data)
}

// handleReport renders the markdown report of the current selection
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	data, sel, ok := a.prepare(w, r)
	if !ok {
		return
	}

	snap, err := a.dashboard.Compute(r.Context(), sel)
	if err != nil {
		http.Error(w, err.Error(), apperrors.HTTPStatus(err))
		return
	}
	a.renderTemplate(w, "report.html", map[string]interface{}{
		"Title": data.Title,
		"Query": data.Query,
		"Body":  template.HTML(report.HTML(snap)),
	})
}

// handleViewFragment renders one view, for HTMX partial refreshes
func (a *App) handleViewFragment(w http.ResponseWriter, r *http.Request) {
	_, sel, ok := a.prepare(w, r)
	if !ok {
		return
	}

	snap, err := a.dashboard.ComputeView(r.Context(), sel, chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), apperrors.HTTPStatus(err))
		return
	}
	a.renderTemplate(w, "view", snap.Views[0])
}

// prepare reads the schema and the form into a selection. It writes the
// error response itself when it returns false.
func (a *App) prepare(w http.ResponseWriter, r *http.Request) (pageData, filter.Selection, bool) {
	columns, err := a.dashboard.Schema(r.Context())
	if err != nil {
		http.Error(w, err.Error(), apperrors.HTTPStatus(err))
		return pageData{}, filter.Selection{}, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return pageData{}, filter.Selection{}, false
	}
	sel, err := selectionFromForm(r.Form, columns)
	if err != nil {
		http.Error(w, "invalid slider value: "+err.Error(), http.StatusBadRequest)
		return pageData{}, filter.Selection{}, false
	}

	data := pageData{
		Title:     a.dashboard.Layout().Title,
		Source:    a.dashboard.Source(),
		Columns:   columns,
		Selection: sel,
		Query:     r.URL.RawQuery,
	}
	return data, sel, true
}
