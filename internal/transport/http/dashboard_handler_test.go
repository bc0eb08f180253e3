package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/internal/config"
	apierrors "stockboard/internal/errors"
	"stockboard/internal/services"
	"stockboard/pkg/contracts/domain"
)

func newTestRouter(t *testing.T) (*chi.Mux, *services.DashboardService) {
	t.Helper()

	cfg := config.Default()
	cfg.Dashboard.SampleSeed = 7

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc, err := services.NewDashboardService(&cfg, logger)
	require.NoError(t, err)

	errorHandler := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewDashboardHandler(svc, logger, errorHandler).RegisterRoutes(r)
		r.Mount("/dataset", NewDatasetHandler(svc, cfg.Dashboard.MaxUploadBytes, logger, errorHandler).Routes())
	})
	return r, svc
}

func doJSON(t *testing.T, router http.Handler, method, target string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestGetMonths(t *testing.T) {
	router, _ := newTestRouter(t)

	var body struct {
		Months []string `json:"months"`
	}
	rec := doJSON(t, router, http.MethodGet, "/api/months", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body.Months)
}

func TestGetIndustries_IncludesAll(t *testing.T) {
	router, _ := newTestRouter(t)

	var body struct {
		Industries []string `json:"industries"`
	}
	rec := doJSON(t, router, http.MethodGet, "/api/industries", &body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body.Industries)
	assert.Equal(t, "All", body.Industries[0])
}

func TestGetDashboard_DefaultsToNewestMonth(t *testing.T) {
	router, svc := newTestRouter(t)

	var vm domain.ViewModel
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard", &vm)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, svc.Months(context.Background())[0], vm.Month)
	assert.Equal(t, "All", vm.Industry)
	assert.NotEmpty(t, vm.Daily)
	assert.NotEmpty(t, vm.TopCompanies)
}

func TestGetDashboard_EmptyFilterIsProblem422(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard?month=1999-01", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/dashboard/empty-filter", problem["type"])
}

func TestGetDashboard_RejectsMalformedMonth(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, month := range []string{"latest", "2024-13", "2024-10-01"} {
		rec := doJSON(t, router, http.MethodGet, "/api/dashboard?month="+month, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "month %q", month)

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "/errors/validation", problem["type"])
	}
}

func TestGetDashboard_ClampsTopK(t *testing.T) {
	router, _ := newTestRouter(t)

	var vm domain.ViewModel
	rec := doJSON(t, router, http.MethodGet, "/api/dashboard?top_k=50", &vm)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, vm.TopK)
	assert.LessOrEqual(t, len(vm.TopCompanies), 20)
}

func TestGetDashboard_RejectsNonNumericTopK(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard?top_k=lots", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV_DownloadHeaders(t *testing.T) {
	router, svc := newTestRouter(t)
	month := svc.Months(context.Background())[0]

	rec := doJSON(t, router, http.MethodGet, "/api/export/csv?month="+month, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock_filtered_"+month+".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "Ticker")
}

func TestExportCSV_EmptyFilterIsProblem422(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/export/csv?month=1999-01", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}
