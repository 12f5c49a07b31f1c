package pages

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/server/middleware"
	authsvc "github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.SavedPrediction), args.Error(1)
}

func (m *mockHistory) Summary(ctx context.Context, ownerID string) (*domain.HistorySummary, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.(*domain.HistorySummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockHistory) Save(ctx context.Context, ownerID string, payload map[string]any) (*domain.SavedPrediction, error) {
	args := m.Called(ctx, ownerID, payload)
	if v := args.Get(0); v != nil {
		return v.(*domain.SavedPrediction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockHistory) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (*authsvc.Session, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(*authsvc.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

var demo = domain.Principal{UserID: "1", Email: "demo@revenuecast.com", Name: "Demo User", Role: domain.RoleUser}

func newTestHandler(t *testing.T) (*Handler, *mockHistory, *mockAuth) {
	t.Helper()
	svc := prediction.NewService(prediction.NewEstimator(prediction.DefaultCoefficients(), prediction.ZeroNoise{}), 10)
	history := new(mockHistory)
	auth := new(mockAuth)
	h, err := NewHandler(svc, history, auth, false)
	require.NoError(t, err)
	return h, history, auth
}

func get(h http.HandlerFunc, principal *domain.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		req = req.WithContext(authsvc.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func postForm(h http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	return postFormAs(h, nil, form)
}

func postFormAs(h http.HandlerFunc, principal *domain.Principal, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if principal != nil {
		req = req.WithContext(authsvc.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func scenarioForm() url.Values {
	return url.Values{
		"marketing_spend": {"150000"},
		"rd_spend":        {"120000"},
		"admin_costs":     {"50000"},
		"num_employees":   {"250"},
		"region":          {"North America"},
	}
}

func saveForm() url.Values {
	form := scenarioForm()
	form.Set("company_name", "  Tech Startup  ")
	form.Set("notes", "Q1 plan")
	form.Set("predicted_revenue", "283725")
	form.Set("r2_score", "0.9234")
	form.Set("mae", "8542.33")
	return form
}

func TestHandler_StaticPages(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		expect  []string
	}{
		{"home", h.Home, http.StatusOK, []string{"Start Predicting", "92.3%", "Sign In"}},
		{"about", h.About, http.StatusOK, []string{"How RevenueCast Works", "Our Mission"}},
		{"predict form", h.PredictForm, http.StatusOK, []string{`name="marketing_spend"`, "<option value=\"North America\" selected>"}},
		{"sign-in form", h.SignInForm, http.StatusOK, []string{`action="/auth/signin"`}},
		{"not found", h.NotFound, http.StatusNotFound, []string{"Page Not Found", "Go to Homepage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(tt.handler, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			for _, s := range tt.expect {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestHandler_NavShowsPrincipal(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := get(h.Home, &demo)
	assert.Contains(t, rec.Body.String(), "Demo User")
	assert.Contains(t, rec.Body.String(), `action="/auth/signout"`)
	assert.NotContains(t, rec.Body.String(), `href="/auth/signin"`)
}

func TestHandler_Predict(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postForm(h.Predict, scenarioForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$283,725")
	assert.Contains(t, body, "Predicted Annual Revenue")
	assert.Contains(t, body, "Revenue Breakdown")
	assert.Contains(t, body, "Region (North America)")
	assert.Contains(t, body, `value="150000"`)
	assert.Contains(t, body, "Sign in to Save")
	assert.NotContains(t, body, `action="/predictions/save"`)
}

func TestHandler_Predict_SaveFormWhenSignedIn(t *testing.T) {
	h, _, _ := newTestHandler(t)

	form := scenarioForm()
	form.Set("company_name", "Tech Startup")
	rec := postFormAs(h.Predict, &demo, form)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/predictions/save"`)
	assert.Contains(t, body, `name="predicted_revenue" value="283725"`)
	assert.Contains(t, body, `name="r2_score" value="0.9234"`)
	assert.Contains(t, body, `value="Tech Startup" required`)
	assert.NotContains(t, body, "Sign in to Save")
}

func TestHandler_Predict_Invalid(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postForm(h.Predict, url.Values{
		"marketing_spend": {"lots"},
		"rd_spend":        {"120000"},
		"admin_costs":     {"50000"},
		"num_employees":   {"0"},
		"region":          {"Mars"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Marketing spend must be a non-negative number")
	assert.Contains(t, body, "Number of employees must be at least 1")
	assert.Contains(t, body, "Region must be one of: North America, Europe, Asia")
	assert.NotContains(t, body, "Predicted Annual Revenue")
}

func TestHandler_SignIn(t *testing.T) {
	h, _, auth := newTestHandler(t)
	expires := time.Now().Add(time.Hour)

	auth.On("SignIn", mock.Anything, "demo@revenuecast.com", "demo123").
		Return(&authsvc.Session{Token: "token", ExpiresAt: expires, Principal: demo}, nil)
	auth.On("SignIn", mock.Anything, "demo@revenuecast.com", "wrong").
		Return(nil, domain.ErrInvalidCredentials)

	rec := postForm(h.SignIn, url.Values{"email": {"demo@revenuecast.com"}, "password": {"demo123"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, "token", cookies[0].Value)

	rec = postForm(h.SignIn, url.Values{"email": {"demo@revenuecast.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Contains(t, rec.Body.String(), `value="demo@revenuecast.com"`)
}

func TestHandler_SignInFormRedirectsWhenSignedIn(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := get(h.SignInForm, &demo)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestHandler_SignOut(t *testing.T) {
	h, _, auth := newTestHandler(t)
	auth.On("SignOut", mock.Anything, "token").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token"})
	rec := httptest.NewRecorder()
	h.SignOut(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	auth.AssertExpectations(t)
}

func TestHandler_DashboardRequiresSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	for _, handler := range []http.HandlerFunc{h.Dashboard, h.History} {
		rec := get(handler, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/signin", rec.Header().Get("Location"))
	}
}

func TestHandler_Dashboard(t *testing.T) {
	h, history, _ := newTestHandler(t)
	latest := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	saved := make([]domain.SavedPrediction, 7)
	for i := range saved {
		saved[i] = domain.SavedPrediction{
			ID:               "p",
			OwnerID:          demo.UserID,
			CompanyName:      "Acme",
			Input:            domain.PredictionInput{Region: domain.RegionEurope},
			PredictedRevenue: 142000,
			CreatedAt:        latest,
		}
	}
	saved[0].CompanyName = "Tech Startup"

	history.On("Summary", mock.Anything, "1").Return(&domain.HistorySummary{
		Total:                   7,
		AveragePredictedRevenue: 142000,
		ModelAccuracy:           0.9234,
		LatestAt:                &latest,
	}, nil)
	history.On("List", mock.Anything, "1").Return(saved, nil)

	rec := get(h.Dashboard, &demo)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome back, Demo User")
	assert.Contains(t, body, "$142K")
	assert.Contains(t, body, "92.3%")
	assert.Contains(t, body, "Jan 15, 2024")
	assert.Contains(t, body, "Tech Startup")
	assert.Equal(t, recentLimit, strings.Count(body, "$142,000"))

	rec = get(h.History, &demo)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len(saved), strings.Count(rec.Body.String(), "$142,000"))
}

func TestHandler_HistoryEmptyAndFailure(t *testing.T) {
	h, history, _ := newTestHandler(t)
	history.On("List", mock.Anything, "1").Return([]domain.SavedPrediction{}, nil).Once()
	history.On("List", mock.Anything, "1").Return([]domain.SavedPrediction(nil), errors.New("db down")).Once()

	rec := get(h.History, &demo)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No Predictions Yet")

	rec = get(h.History, &demo)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_SavePrediction(t *testing.T) {
	h, history, _ := newTestHandler(t)

	history.On("Save", mock.Anything, "1", mock.MatchedBy(func(p map[string]any) bool {
		input, _ := p["input_data"].(map[string]any)
		perf, _ := p["model_performance"].(map[string]any)
		return p["companyName"] == "Tech Startup" &&
			p["notes"] == "Q1 plan" &&
			p["predicted_revenue"] == 283725.0 &&
			perf["r2_score"] == 0.9234 &&
			input["num_employees"] == 250.0 &&
			input["region"] == "North America"
	})).Return(&domain.SavedPrediction{ID: "p1"}, nil).Once()

	rec := postFormAs(h.SavePrediction, &demo, saveForm())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/history", rec.Header().Get("Location"))
	history.AssertExpectations(t)
}

func TestHandler_SavePrediction_Errors(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		h, history, _ := newTestHandler(t)
		rec := postForm(h.SavePrediction, saveForm())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/signin", rec.Header().Get("Location"))
		history.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected keeps the result", func(t *testing.T) {
		h, history, _ := newTestHandler(t)
		history.On("Save", mock.Anything, "1", mock.Anything).
			Return(nil, domain.NewValidationError("Missing required field: companyName")).Once()

		form := saveForm()
		form.Set("company_name", "   ")
		rec := postFormAs(h.SavePrediction, &demo, form)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Missing required field: companyName")
		assert.Contains(t, body, "$283,725")
		assert.Contains(t, body, `action="/predictions/save"`)
	})

	t.Run("store failure", func(t *testing.T) {
		h, history, _ := newTestHandler(t)
		history.On("Save", mock.Anything, "1", mock.Anything).
			Return(nil, errors.New("db down")).Once()

		rec := postFormAs(h.SavePrediction, &demo, saveForm())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to save prediction. Please try again.")
	})
}

func TestHandler_DeletePrediction(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		status   int
		location string
	}{
		{name: "deleted", id: "p1", status: http.StatusSeeOther, location: "/dashboard/history"},
		{name: "not found", id: "other", err: domain.ErrNotFound, status: http.StatusNotFound},
		{name: "store failure", id: "p1", err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, history, _ := newTestHandler(t)
			history.On("Delete", mock.Anything, "1", tt.id).Return(tt.err).Once()

			rec := postFormAs(h.DeletePrediction, &demo, url.Values{"id": {tt.id}})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			history.AssertExpectations(t)
		})
	}

	t.Run("requires session", func(t *testing.T) {
		h, history, _ := newTestHandler(t)
		rec := postForm(h.DeletePrediction, url.Values{"id": {"p1"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/signin", rec.Header().Get("Location"))
		history.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_HistoryDeleteButtons(t *testing.T) {
	h, history, _ := newTestHandler(t)
	saved := []domain.SavedPrediction{
		{ID: "p1", CompanyName: "Acme", CreatedAt: time.Now()},
		{ID: "p2", CompanyName: "Globex", CreatedAt: time.Now()},
	}
	history.On("List", mock.Anything, "1").Return(saved, nil)
	history.On("Summary", mock.Anything, "1").Return(&domain.HistorySummary{Total: 2}, nil)

	rec := get(h.History, &demo)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `action="/dashboard/history/delete"`))
	assert.Contains(t, rec.Body.String(), `name="id" value="p2"`)

	rec = get(h.Dashboard, &demo)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `action="/dashboard/history/delete"`)
}
