package history

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListByOwner(ctx context.Context, ownerID string) ([]*store.SavedPrediction, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.([]*store.SavedPrediction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Add(ctx context.Context, p *store.SavedPrediction) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Stats(ctx context.Context, ownerID string) (*store.PredictionStats, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.(*store.PredictionStats), args.Error(1)
	}
	return nil, args.Error(1)
}

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestService(st *mockStore) *Service {
	s := NewService(st)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "pred-1" }
	return s
}

func savePayload() map[string]any {
	return map[string]any{
		"companyName": "Tech Startup Inc",
		"input_data": map[string]any{
			"marketing_spend": 150000.0,
			"rd_spend":        120000.0,
			"admin_costs":     50000.0,
			"num_employees":   250.0,
			"region":          "North America",
		},
		"predicted_revenue": 283725.0,
		"model_performance": map[string]any{"r2_score": 0.9234, "mae": 8542.33},
		"notes":             "Q1 forecast",
	}
}

func violations(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Violations
}

func TestService_Save(t *testing.T) {
	st := &mockStore{}
	s := newTestService(st)

	st.On("Add", mock.Anything, mock.MatchedBy(func(p *store.SavedPrediction) bool {
		return p.ID == "pred-1" &&
			p.OwnerID == "1" &&
			p.CompanyName == "Tech Startup Inc" &&
			p.NumEmployees == 250 &&
			p.Region == "North America" &&
			p.PredictedRevenue == 283725 &&
			p.R2Score == 0.9234 &&
			p.CreatedAt.Equal(fixedNow) &&
			p.Notes == "Q1 forecast"
	})).Return(nil).Once()

	saved, err := s.Save(context.Background(), "1", savePayload())
	require.NoError(t, err)
	assert.Equal(t, "pred-1", saved.ID)
	assert.Equal(t, domain.RegionNorthAmerica, saved.Input.Region)
	assert.Equal(t, 8542.33, saved.Performance.MAE)
	st.AssertExpectations(t)
}

func TestService_Save_MissingFields(t *testing.T) {
	for _, field := range requiredFields {
		t.Run(field, func(t *testing.T) {
			payload := savePayload()
			delete(payload, field)

			_, err := newTestService(&mockStore{}).Save(context.Background(), "1", payload)
			assert.Equal(t, []string{"Missing required field: " + field}, violations(t, err))
		})
	}

	for _, name := range []string{"", "   ", "\t\n"} {
		t.Run("blank company name "+strconv.Quote(name), func(t *testing.T) {
			payload := savePayload()
			payload["companyName"] = name
			_, err := newTestService(&mockStore{}).Save(context.Background(), "1", payload)
			assert.Equal(t, []string{"Missing required field: companyName"}, violations(t, err))
		})
	}

	t.Run("first missing field wins", func(t *testing.T) {
		payload := savePayload()
		delete(payload, "model_performance")
		delete(payload, "input_data")
		_, err := newTestService(&mockStore{}).Save(context.Background(), "1", payload)
		assert.Equal(t, []string{"Missing required field: input_data"}, violations(t, err))
	})
}

func TestService_Save_InvalidTypes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{
			name:   "revenue as string",
			mutate: func(p map[string]any) { p["predicted_revenue"] = "lots" },
			want:   "predicted_revenue",
		},
		{
			name:   "negative revenue",
			mutate: func(p map[string]any) { p["predicted_revenue"] = -1.0 },
			want:   "predicted_revenue",
		},
		{
			name:   "performance without mae",
			mutate: func(p map[string]any) { p["model_performance"] = map[string]any{"r2_score": 0.9} },
			want:   "mae",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := savePayload()
			tt.mutate(payload)

			_, err := newTestService(&mockStore{}).Save(context.Background(), "1", payload)
			v := violations(t, err)
			require.NotEmpty(t, v)
			assert.Contains(t, v[0], tt.want)
		})
	}
}

func TestService_Save_InvalidInputData(t *testing.T) {
	payload := savePayload()
	payload["input_data"].(map[string]any)["region"] = "Mars"

	_, err := newTestService(&mockStore{}).Save(context.Background(), "1", payload)
	assert.Equal(t, []string{"Region must be one of: North America, Europe, Asia"}, violations(t, err))
}

func TestService_Save_StoreError(t *testing.T) {
	st := &mockStore{}
	st.On("Add", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := newTestService(st).Save(context.Background(), "1", savePayload())
	assert.ErrorContains(t, err, "save prediction: disk full")
}

func TestService_List(t *testing.T) {
	st := &mockStore{}
	st.On("ListByOwner", mock.Anything, "1").Return([]*store.SavedPrediction{
		{ID: "2", OwnerID: "1", CompanyName: "B", Region: "Europe", NumEmployees: 500, CreatedAt: fixedNow},
		{ID: "1", OwnerID: "1", CompanyName: "A", Region: "Asia", NumEmployees: 10, CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil).Once()

	list, err := newTestService(st).List(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)
	assert.Equal(t, domain.RegionEurope, list[0].Input.Region)
	assert.Equal(t, 10, list[1].Input.NumEmployees)
}

func TestService_List_Error(t *testing.T) {
	st := &mockStore{}
	st.On("ListByOwner", mock.Anything, "1").Return(nil, errors.New("boom")).Once()

	_, err := newTestService(st).List(context.Background(), "1")
	assert.Error(t, err)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		deleted bool
		err     error
		want    error
	}{
		{name: "deleted", deleted: true},
		{name: "not found", deleted: false, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{}
			st.On("Delete", mock.Anything, "1", "x").Return(tt.deleted, tt.err).Once()

			err := newTestService(st).Delete(context.Background(), "1", "x")
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("store error", func(t *testing.T) {
		st := &mockStore{}
		st.On("Delete", mock.Anything, "1", "x").Return(false, errors.New("boom")).Once()

		err := newTestService(st).Delete(context.Background(), "1", "x")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_Summary(t *testing.T) {
	st := &mockStore{}
	st.On("Stats", mock.Anything, "1").Return(&store.PredictionStats{
		Count:          2,
		AverageRevenue: 195678,
		LatestAt:       &fixedNow,
	}, nil).Once()

	summary, err := newTestService(st).Summary(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 195678.0, summary.AveragePredictedRevenue)
	assert.Equal(t, 0.9234, summary.ModelAccuracy)
	assert.Equal(t, &fixedNow, summary.LatestAt)
}
