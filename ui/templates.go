package ui

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"shoplens/domain/filter"
	"shoplens/internal/report"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"table": report.Table,
		"pct": func(part, total int) float64 {
			if total == 0 {
				return 0
			}
			return float64(part) * 100 / float64(total)
		},
		"hasRange": func(sel filter.Selection, column string) bool {
			_, ok := sel.Ranges[column]
			return ok
		},
		"contains": func(list []string, v string) bool {
			for _, item := range list {
				if item == v {
					return true
				}
			}
			return false
		},
	}
}

// renderTemplate executes a template with the given data
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	a.renderTemplateStatus(w, http.StatusOK, templateName, data)
}

func (a *App) renderTemplateStatus(w http.ResponseWriter, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
