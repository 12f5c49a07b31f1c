package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.([]domain.SavedPrediction), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

var created = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func history() []domain.SavedPrediction {
	return []domain.SavedPrediction{{
		ID:          "1",
		OwnerID:     "1",
		CompanyName: "Tech Startup, Inc",
		Input: domain.PredictionInput{
			MarketingSpend: 150000,
			RDSpend:        120000,
			AdminCosts:     50000,
			NumEmployees:   250,
			Region:         domain.RegionNorthAmerica,
		},
		PredictedRevenue: 283725,
		Performance:      domain.ModelPerformance{R2Score: 0.9234, MAE: 8542.33},
		CreatedAt:        created,
		Notes:            "Q1",
	}}
}

func TestExporter_WriteTo(t *testing.T) {
	h := &mockHistory{}
	h.On("List", mock.Anything, "1").Return(history(), nil).Once()

	var buf bytes.Buffer
	n, err := NewExporter(h, nil, "").WriteTo(context.Background(), "1", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,company_name,created_at,marketing_spend,rd_spend,admin_costs,num_employees,region,predicted_revenue,r2_score,mae,notes", lines[0])
	assert.Equal(t, `1,"Tech Startup, Inc",2024-01-15T10:30:00Z,150000,120000,50000,250,North America,283725,0.9234,8542.33,Q1`, lines[1])
}

func TestExporter_WriteTo_EscapesFormulas(t *testing.T) {
	list := history()
	list[0].CompanyName = "=HYPERLINK(\"http://evil\")"
	list[0].Notes = "@SUM(A1)"
	second := history()[0]
	second.CompanyName = "-1+2"
	second.Notes = "+cmd"
	list = append(list, second)

	h := &mockHistory{}
	h.On("List", mock.Anything, "1").Return(list, nil).Once()

	var buf bytes.Buffer
	_, err := NewExporter(h, nil, "").WriteTo(context.Background(), "1", &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `1,"'=HYPERLINK(""http://evil"")",`))
	assert.True(t, strings.HasSuffix(lines[1], ",'@SUM(A1)"))
	assert.True(t, strings.HasPrefix(lines[2], "1,'-1+2,"))
	assert.True(t, strings.HasSuffix(lines[2], ",'+cmd"))
}

func TestExporter_WriteTo_Empty(t *testing.T) {
	h := &mockHistory{}
	h.On("List", mock.Anything, "1").Return([]domain.SavedPrediction{}, nil).Once()

	var buf bytes.Buffer
	n, err := NewExporter(h, nil, "").WriteTo(context.Background(), "1", &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, strings.HasPrefix(buf.String(), "id,company_name"))
}

func TestExporter_Export(t *testing.T) {
	h := &mockHistory{}
	h.On("List", mock.Anything, "1").Return(history(), nil).Once()
	objects := &mockObjects{}
	objects.On("PutObject", mock.Anything, "exports/1/20240115T103000Z.csv", mock.Anything, "text/csv").
		Return("s3://bucket/exports/1/20240115T103000Z.csv", nil).Once()

	e := NewExporter(h, objects, "exports")
	e.now = func() time.Time { return created }

	location, n, err := e.Export(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "s3://bucket/exports/1/20240115T103000Z.csv", location)
	objects.AssertExpectations(t)
}

func TestExporter_Errors(t *testing.T) {
	t.Run("no object storage", func(t *testing.T) {
		_, _, err := NewExporter(&mockHistory{}, nil, "").Export(context.Background(), "1")
		assert.Error(t, err)
	})

	t.Run("history failure", func(t *testing.T) {
		h := &mockHistory{}
		h.On("List", mock.Anything, "1").Return(nil, errors.New("db down")).Once()
		_, _, err := NewExporter(h, &mockObjects{}, "").Export(context.Background(), "1")
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("upload failure", func(t *testing.T) {
		h := &mockHistory{}
		h.On("List", mock.Anything, "1").Return(history(), nil).Once()
		objects := &mockObjects{}
		objects.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("denied")).Once()
		_, _, err := NewExporter(h, objects, "").Export(context.Background(), "1")
		assert.ErrorContains(t, err, "denied")
	})
}
