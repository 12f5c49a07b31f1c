package pages

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/format"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/server/middleware"
	authsvc "github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const recentLimit = 5

type Predictor interface {
	Predict(ctx context.Context, payload map[string]any) (*domain.PredictionOutput, error)
	Breakdown(input domain.PredictionInput) []domain.Contribution
	ModelInfo() domain.ModelInfo
}

type History interface {
	List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error)
	Save(ctx context.Context, ownerID string, payload map[string]any) (*domain.SavedPrediction, error)
	Delete(ctx context.Context, ownerID, id string) error
	Summary(ctx context.Context, ownerID string) (*domain.HistorySummary, error)
}

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*authsvc.Session, error)
	SignOut(ctx context.Context, token string) error
}

type predictForm struct {
	MarketingSpend string
	RDSpend        string
	AdminCosts     string
	NumEmployees   string
	Region         string
}

type pageData struct {
	Principal   *domain.Principal
	Model       domain.ModelInfo
	Regions     []domain.Region
	Form        predictForm
	CompanyName string
	Notes       string
	Result      *domain.PredictionOutput
	Breakdown   []domain.Contribution
	Errors      []string
	Email       string
	Summary     *domain.HistorySummary
	Predictions []domain.SavedPrediction
	Deletable   bool
}

type Handler struct {
	predictor    Predictor
	history      History
	auth         Authenticator
	secureCookie bool
	pages        map[string]*template.Template
}

var funcs = template.FuncMap{
	"currency": format.Currency,
	"compact":  format.Compact,
	"percent":  format.Percent,
	"number":   func(n int) string { return format.Number(int64(n)) },
}

func NewHandler(predictor Predictor, history History, auth Authenticator, secureCookie bool) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "about", "predict", "signin", "dashboard", "history", "notfound"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/predictions.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{
		predictor:    predictor,
		history:      history,
		auth:         auth,
		secureCookie: secureCookie,
		pages:        pages,
	}, nil
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", h.data(r))
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", h.data(r))
}

func (h *Handler) PredictForm(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data.Form.Region = string(domain.RegionNorthAmerica)
	h.render(w, r, http.StatusOK, "predict", data)
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	if err := r.ParseForm(); err != nil {
		data.Errors = []string{"Unable to read the submitted form"}
		h.render(w, r, http.StatusBadRequest, "predict", data)
		return
	}

	data.Form = readPredictForm(r)
	data.CompanyName = strings.TrimSpace(r.PostForm.Get("company_name"))

	out, err := h.predictor.Predict(r.Context(), data.Form.payload())
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = verr.Violations
		h.render(w, r, http.StatusBadRequest, "predict", data)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("form prediction failed")
		data.Errors = []string{"Failed to process prediction request"}
		h.render(w, r, http.StatusInternalServerError, "predict", data)
		return
	}

	data.Result = out
	data.Breakdown = h.predictor.Breakdown(out.Input)
	h.render(w, r, http.StatusOK, "predict", data)
}

// SavePrediction stores a prediction shown on the result view. The form
// carries the displayed result back, since a new estimate would differ by
// its noise.
func (h *Handler) SavePrediction(w http.ResponseWriter, r *http.Request) {
	data, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		data.Errors = []string{"Unable to read the submitted form"}
		h.render(w, r, http.StatusBadRequest, "predict", data)
		return
	}

	data.Form = readPredictForm(r)
	data.CompanyName = strings.TrimSpace(r.PostForm.Get("company_name"))
	data.Notes = strings.TrimSpace(r.PostForm.Get("notes"))
	revenue := formNumber(r.PostForm.Get("predicted_revenue"))
	performance := map[string]any{
		"r2_score": formNumber(r.PostForm.Get("r2_score")),
		"mae":      formNumber(r.PostForm.Get("mae")),
	}

	payload := map[string]any{
		"companyName":       data.CompanyName,
		"input_data":        data.Form.payload(),
		"predicted_revenue": revenue,
		"model_performance": performance,
	}
	if data.Notes != "" {
		payload["notes"] = data.Notes
	}

	saved, err := h.history.Save(r.Context(), data.Principal.UserID, payload)
	if err == nil {
		zerolog.Ctx(r.Context()).Debug().Str("prediction_id", saved.ID).Msg("prediction saved from form")
		http.Redirect(w, r, "/dashboard/history", http.StatusSeeOther)
		return
	}

	status := http.StatusBadRequest
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		data.Errors = verr.Violations
	} else {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("form save failed")
		data.Errors = []string{"Failed to save prediction. Please try again."}
		status = http.StatusInternalServerError
	}
	h.restoreResult(&data, revenue, performance)
	h.render(w, r, status, "predict", data)
}

// DeletePrediction removes one of the signed-in user's saved predictions.
func (h *Handler) DeletePrediction(w http.ResponseWriter, r *http.Request) {
	data, ok := h.signedIn(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.history.Delete(r.Context(), data.Principal.UserID, r.PostForm.Get("id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.render(w, r, http.StatusNotFound, "notfound", data)
		return
	case err != nil:
		h.failed(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard/history", http.StatusSeeOther)
}

func (h *Handler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.PrincipalFrom(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "signin", h.data(r))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	if err := r.ParseForm(); err != nil {
		data.Errors = []string{"Unable to read the submitted form"}
		h.render(w, r, http.StatusBadRequest, "signin", data)
		return
	}
	data.Email = strings.TrimSpace(r.PostForm.Get("email"))

	session, err := h.auth.SignIn(r.Context(), data.Email, r.PostForm.Get("password"))
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		data.Errors = []string{"Invalid email or password"}
		h.render(w, r, http.StatusUnauthorized, "signin", data)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("form sign-in failed")
		data.Errors = []string{"Something went wrong. Please try again."}
		h.render(w, r, http.StatusInternalServerError, "signin", data)
		return
	}

	middleware.SetSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookie)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.auth.SignOut(r.Context(), token); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("form sign-out failed")
		}
	}
	middleware.SetSessionCookie(w, "", time.Time{}, h.secureCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	summary, err := h.history.Summary(r.Context(), data.Principal.UserID)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	list, err := h.history.List(r.Context(), data.Principal.UserID)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	if len(list) > recentLimit {
		list = list[:recentLimit]
	}

	data.Summary = summary
	data.Predictions = list
	h.render(w, r, http.StatusOK, "dashboard", data)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	data, ok := h.signedIn(w, r)
	if !ok {
		return
	}

	list, err := h.history.List(r.Context(), data.Principal.UserID)
	if err != nil {
		h.failed(w, r, err)
		return
	}
	data.Predictions = list
	data.Deletable = true
	h.render(w, r, http.StatusOK, "history", data)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound", h.data(r))
}

func (h *Handler) data(r *http.Request) pageData {
	data := pageData{
		Model:   h.predictor.ModelInfo(),
		Regions: domain.Regions(),
	}
	if p, ok := authsvc.PrincipalFrom(r.Context()); ok {
		data.Principal = &p
	}
	return data
}

func (h *Handler) signedIn(w http.ResponseWriter, r *http.Request) (pageData, bool) {
	data := h.data(r)
	if data.Principal == nil {
		http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
		return data, false
	}
	return data, true
}

func (h *Handler) failed(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load prediction history")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// render executes into a buffer first so a template failure never leaves a
// half-written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("failed to write page")
	}
}

// restoreResult rebuilds the result view from a rejected save form so the
// user keeps the prediction they were looking at.
func (h *Handler) restoreResult(data *pageData, revenue any, performance map[string]any) {
	input, err := prediction.Validate(data.Form.payload())
	if err != nil {
		return
	}
	r2, _ := performance["r2_score"].(float64)
	mae, _ := performance["mae"].(float64)
	value, _ := revenue.(float64)
	data.Result = &domain.PredictionOutput{
		PredictedRevenue: value,
		Input:            input,
		Performance:      domain.ModelPerformance{R2Score: r2, MAE: mae},
	}
	data.Breakdown = h.predictor.Breakdown(input)
}

func readPredictForm(r *http.Request) predictForm {
	return predictForm{
		MarketingSpend: strings.TrimSpace(r.PostForm.Get("marketing_spend")),
		RDSpend:        strings.TrimSpace(r.PostForm.Get("rd_spend")),
		AdminCosts:     strings.TrimSpace(r.PostForm.Get("admin_costs")),
		NumEmployees:   strings.TrimSpace(r.PostForm.Get("num_employees")),
		Region:         strings.TrimSpace(r.PostForm.Get("region")),
	}
}

// formNumber parses a numeric form value. Anything else, including an
// empty field, is returned unchanged for the validators to report.
func formNumber(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return value
}

// payload mirrors the JSON body of the prediction API. Values that do not
// parse as numbers are passed through so the validator reports them.
func (f predictForm) payload() map[string]any {
	payload := map[string]any{}
	set := func(key, value string) {
		if n := formNumber(value); n != nil {
			payload[key] = n
		}
	}
	set("marketing_spend", f.MarketingSpend)
	set("rd_spend", f.RDSpend)
	set("admin_costs", f.AdminCosts)
	set("num_employees", f.NumEmployees)
	if f.Region != "" {
		payload["region"] = f.Region
	}
	return payload
}
