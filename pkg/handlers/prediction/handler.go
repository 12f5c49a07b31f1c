package prediction

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/handlers/respond"
	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/rs/zerolog"
)

const (
	apiVersion        = "1.0.0"
	msgInvalidInput   = "Invalid input data"
	msgInternalError  = "Internal server error"
	msgPredictFailure = "Failed to process prediction request"
)

type Predictor interface {
	Predict(ctx context.Context, payload map[string]any) (*domain.PredictionOutput, error)
	PredictBatch(ctx context.Context, companies []map[string]any) (*domain.BatchOutput, error)
	ModelInfo() domain.ModelInfo
}

type Handler struct {
	predictor Predictor
	now       func() time.Time
}

func NewHandler(predictor Predictor) *Handler {
	return &Handler{
		predictor: predictor,
		now:       time.Now,
	}
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	payload, err := respond.DecodeObject(r)
	if err != nil {
		respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{
			Error:   msgInvalidInput,
			Details: []string{respond.MsgBodyNotObject},
		})
		return
	}

	out, err := h.predictor.Predict(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapDomainOutputToAPI(out))
}

func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	info := h.predictor.ModelInfo()
	respond.JSON(w, r, http.StatusOK, api.APIDescription{
		Message: "Revenue Prediction API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"predict":       "POST /api/predict",
			"batch_predict": "POST /api/batch-predict",
			"model_info":    "GET /api/model-info",
		},
		ModelPerformance: api.ModelPerformance{
			R2Score: info.Performance.R2Score,
			MAE:     info.Performance.MAE,
		},
	})
}

func (h *Handler) BatchPredict(w http.ResponseWriter, r *http.Request) {
	var req api.BatchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{
			Error:   msgInvalidInput,
			Details: []string{respond.MsgBodyNotObject},
		})
		return
	}

	out, err := h.predictor.PredictBatch(r.Context(), req.Companies)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapDomainBatchToAPI(out))
}

func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, api.ModelInfoResponse{
		Success:   true,
		Data:      adapters.MapDomainModelInfoToAPI(h.predictor.ModelInfo()),
		Timestamp: adapters.FormatTimestamp(h.now()),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, api.Health{
		Status:      "healthy",
		ModelLoaded: h.predictor != nil,
		Timestamp:   adapters.FormatTimestamp(h.now()),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{
			Error:   msgInvalidInput,
			Details: verr.Violations,
		})
		return
	}

	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Msg("prediction request failed")
	respond.JSON(w, r, http.StatusInternalServerError, api.ErrorResponse{
		Error:   msgInternalError,
		Message: msgPredictFailure,
	})
}
