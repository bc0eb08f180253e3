package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stockboard/internal/analytics"
	apierrors "stockboard/internal/errors"
	"stockboard/internal/exporter"
	"stockboard/internal/infrastructure"
	"stockboard/internal/middleware"
)

// DashboardHandler serves the read side of the API: the rendered view
// model, the selector option lists, and the filtered CSV export.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
}

// NewDashboardHandler creates a dashboard handler with RFC 7807 error handling.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "dashboard_handler"),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the dashboard routes as a mountable subrouter.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the dashboard routes to an existing router,
// keeping the parent's NotFound behavior intact.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/months", h.GetMonths)
	r.Get("/industries", h.GetIndustries)
	r.Get("/export/csv", h.ExportCSV)
}

// GetDashboard handles GET /api/dashboard.
//
// Query parameters: month (defaults to the newest month), industry
// (defaults to All), top_k (5..20), anim_n (2..10). Out-of-range K and N
// are clamped rather than rejected, mirroring the UI sliders.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, ok := h.params.ValidateMonth(w, r, "month")
	if !ok {
		return
	}

	sel := analytics.Selectors{
		Month:    month,
		Industry: r.URL.Query().Get("industry"),
	}

	// Slider parameters clamp like the UI does instead of rejecting.
	topK, ok := h.params.ClampInt(w, r, "top_k", analytics.MinTopK, analytics.MaxTopK, analytics.DefaultTopK)
	if !ok {
		return
	}
	animN, ok := h.params.ClampInt(w, r, "anim_n", analytics.MinAnimN, analytics.MaxAnimN, analytics.DefaultAnimN)
	if !ok {
		return
	}
	sel.TopK = topK
	sel.AnimN = animN

	if sel.Month == "" {
		months := h.service.Months(ctx)
		if len(months) == 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
			return
		}
		sel.Month = months[0]
	}

	vm, err := h.service.Dashboard(ctx, sel)
	if err != nil {
		if errors.Is(err, analytics.ErrNoRowsForFilter) {
			h.errorHandler.HandleError(w, r, apierrors.EmptyFilterError(sel.Month, sel.Industry))
			return
		}
		infrastructure.WithError(h.logger, err).ErrorContext(ctx, "dashboard render failed",
			slog.String("month", sel.Month))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, vm)
}

// GetMonths handles GET /api/months.
func (h *DashboardHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"months": h.service.Months(r.Context()),
	})
}

// GetIndustries handles GET /api/industries.
func (h *DashboardHandler) GetIndustries(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"industries": h.service.Industries(r.Context()),
	})
}

// ExportCSV handles GET /api/export/csv. The response streams the
// filtered rows with a Content-Disposition filename derived from the
// month, so the browser saves e.g. stock_filtered_2023-05.csv.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, ok := h.params.ValidateMonth(w, r, "month")
	if !ok {
		return
	}
	industry := r.URL.Query().Get("industry")

	if month == "" {
		months := h.service.Months(ctx)
		if len(months) == 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
			return
		}
		month = months[0]
	}

	// The service rejects an empty filter before writing any bytes, so a
	// deferred header keeps the failure path free for a JSON problem.
	out := &csvDownloadWriter{w: w, filename: exporter.Filename(month)}

	_, rowCount, err := h.service.ExportCSV(ctx, month, industry, out)
	if err != nil {
		if errors.Is(err, analytics.ErrNoRowsForFilter) {
			h.errorHandler.HandleError(w, r, apierrors.EmptyFilterError(month, industry))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "csv export served",
		slog.String("month", month),
		slog.String("industry", industry),
		slog.Int("row_count", rowCount))
}

// csvDownloadWriter sets the CSV download headers on first write, so the
// handler can still render a JSON problem if the export fails before
// producing any bytes.
type csvDownloadWriter struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (d *csvDownloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		d.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.filename))
	}
	return d.w.Write(p)
}
