package predictions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/handlers/respond"
	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/de-tools/revenuecast/pkg/services/export"
	"github.com/rs/zerolog"
)

type History interface {
	List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error)
	Save(ctx context.Context, ownerID string, payload map[string]any) (*domain.SavedPrediction, error)
	Delete(ctx context.Context, ownerID, id string) error
	Summary(ctx context.Context, ownerID string) (*domain.HistorySummary, error)
}

// Exporter renders an owner's history as CSV.
type Exporter interface {
	WriteTo(ctx context.Context, ownerID string, w io.Writer) (int, error)
	Export(ctx context.Context, ownerID string) (string, int, error)
}

type Handler struct {
	history  History
	exporter Exporter
}

func NewHandler(history History) *Handler {
	return &Handler{history: history}
}

// WithExporter enables the export endpoints.
func (h *Handler) WithExporter(e Exporter) *Handler {
	h.exporter = e
	return h
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	list, err := h.history.List(r.Context(), principal.UserID)
	if err != nil {
		h.internalError(w, r, err, "failed to list saved predictions")
		return
	}

	respond.JSON(w, r, http.StatusOK, api.PredictionList{
		Predictions: adapters.MapDomainSavedPredictionsToAPI(list),
		Total:       len(list),
		Status:      api.StatusSuccess,
	})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	payload, err := respond.DecodeObject(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.MsgBodyNotObject)
		return
	}

	saved, err := h.history.Save(r.Context(), principal.UserID, payload)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{
			Error:   verr.Violations[0],
			Details: verr.Violations,
		})
		return
	case err != nil:
		h.internalError(w, r, err, "failed to save prediction")
		return
	}

	respond.JSON(w, r, http.StatusOK, api.SavePredictionResponse{
		Prediction: adapters.MapDomainSavedPredictionToAPI(*saved),
		Message:    "Prediction saved successfully",
		Status:     api.StatusSuccess,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		respond.Error(w, r, http.StatusBadRequest, "Prediction ID is required")
		return
	}

	err := h.history.Delete(r.Context(), principal.UserID, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Prediction not found")
		return
	case err != nil:
		h.internalError(w, r, err, "failed to delete prediction")
		return
	}

	respond.JSON(w, r, http.StatusOK, api.MessageResponse{
		Message: "Prediction deleted successfully",
		Status:  api.StatusSuccess,
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	summary, err := h.history.Summary(r.Context(), principal.UserID)
	if err != nil {
		h.internalError(w, r, err, "failed to summarise predictions")
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapDomainSummaryToAPI(*summary))
}

// Download streams the caller's history as a CSV attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	if h.exporter == nil {
		respond.Error(w, r, http.StatusNotFound, "Export is not available")
		return
	}

	var buf bytes.Buffer
	if _, err := h.exporter.WriteTo(r.Context(), principal.UserID, &buf); err != nil {
		h.internalError(w, r, err, "failed to export predictions")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="predictions.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write export")
	}
}

// Upload writes the caller's history to object storage.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	if h.exporter == nil {
		respond.Error(w, r, http.StatusNotFound, "Export is not available")
		return
	}

	location, n, err := h.exporter.Export(r.Context(), principal.UserID)
	switch {
	case errors.Is(err, export.ErrNoObjectStorage):
		respond.Error(w, r, http.StatusServiceUnavailable, "Export storage is not configured")
		return
	case err != nil:
		h.internalError(w, r, err, "failed to upload predictions")
		return
	}

	respond.JSON(w, r, http.StatusOK, api.ExportResponse{
		Location: location,
		Rows:     n,
		Status:   api.StatusSuccess,
	})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized")
	}
	return p, ok
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Msg(msg)
	respond.Error(w, r, http.StatusInternalServerError, "Internal server error")
}
