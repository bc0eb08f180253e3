package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "stockboard/internal/errors"
	"stockboard/internal/infrastructure"
	"stockboard/internal/middleware"
	"stockboard/internal/services"
	"stockboard/internal/validation"
)

// uploadFieldName is the multipart form field carrying the table file.
const uploadFieldName = "file"

// DatasetHandler serves the write side of the API: replacing the active
// table by upload, resetting to the sample, and describing the dataset.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         infrastructure.WithComponent(logger, "dataset_handler"),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDataset)
	r.With(middleware.ContentTypeValidator("multipart/form-data")).Post("/upload", h.Upload)
	r.Post("/sample", h.UseSample)

	return r
}

// GetDataset handles GET /api/dataset.
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Info(r.Context()))
}

// Upload handles POST /api/dataset/upload. The request is multipart
// form data with the table under the "file" field. Missing required
// columns are not an upload failure: the service substitutes the sample
// table and the response carries the warning with fallback=true.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFieldName, "multipart file field is required"))
		return
	}
	defer file.Close()

	result, err := h.service.Upload(ctx, file, header.Filename, header.Size)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapUploadError(err, header.Filename))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"source":    result.Source,
		"row_count": len(result.Records),
		"fallback":  result.Fallback,
		"warning":   result.Warning,
	})
}

// UseSample handles POST /api/dataset/sample.
func (h *DatasetHandler) UseSample(w http.ResponseWriter, r *http.Request) {
	result := h.service.UseSample(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"source":    result.Source,
		"row_count": len(result.Records),
	})
}

// mapUploadError translates service and validation failures into the
// API error vocabulary.
func (h *DatasetHandler) mapUploadError(err error, filename string) error {
	switch {
	case errors.Is(err, validation.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	case errors.Is(err, validation.ErrFileTooLarge):
		return apierrors.ErrUploadTooLarge
	case errors.Is(err, validation.ErrInvalidFilename):
		return apierrors.ErrValidation("filename", err.Error())
	case errors.Is(err, services.ErrDatasetEmpty):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY",
			"Uploaded table has no data rows", filename)
	default:
		infrastructure.WithError(h.logger, err).Warn("upload rejected",
			slog.String("filename", filename))
		return apierrors.UnparseableTableError(err)
	}
}
