package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shoplens/app"
	"shoplens/domain/filter"
	"shoplens/internal"
	apperrors "shoplens/internal/errors"
	"shoplens/internal/report"
)

// DashboardHandler serves dashboard snapshots over JSON
type DashboardHandler struct {
	dashboard *app.DashboardService
	logger    *internal.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *app.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    internal.DefaultLogger,
	}
}

// RegisterRoutes mounts the handler on a gin router
func (h *DashboardHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/schema", h.GetSchema)
	api.GET("/layout", h.GetLayout)
	api.POST("/views", h.ComputeViews)
	api.POST("/views/:name", h.ComputeView)
	api.POST("/report", h.Report)
}

// Health reports liveness and the current source identity
func (h *DashboardHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": h.dashboard.Source(),
	})
}

// GetSchema returns the column descriptions used to build filter widgets
func (h *DashboardHandler) GetSchema(c *gin.Context) {
	columns, err := h.dashboard.Schema(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":  h.dashboard.Source(),
		"columns": columns,
	})
}

// GetLayout returns the configured views
func (h *DashboardHandler) GetLayout(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Layout())
}

// ComputeViews filters the dataset by the posted selection and computes
// every view
func (h *DashboardHandler) ComputeViews(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	snap, err := h.dashboard.Compute(c.Request.Context(), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ComputeView computes a single named view
func (h *DashboardHandler) ComputeView(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	snap, err := h.dashboard.ComputeView(c.Request.Context(), sel, c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Report renders a full snapshot as markdown, or HTML with ?format=html
func (h *DashboardHandler) Report(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	snap, err := h.dashboard.Compute(c.Request.Context(), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(snap))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(snap)))
}

// bindSelection decodes the request body. An empty body selects every row.
func (h *DashboardHandler) bindSelection(c *gin.Context) (filter.Selection, bool) {
	var sel filter.Selection
	if err := c.ShouldBindJSON(&sel); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid selection: " + err.Error(),
			"code":  apperrors.CodeInvalidInput,
		})
		return filter.Selection{}, false
	}
	return sel, true
}

func (h *DashboardHandler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
