package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/jszwec/csvutil"
	"github.com/rs/zerolog"
)

const contentType = "text/csv"

type HistoryLister interface {
	List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error)
}

type ObjectWriter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// amount keeps large values out of exponent notation.
type amount float64

func (a amount) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(a), 'f', -1, 64), nil
}

// text is free-form user input. Values that a spreadsheet would evaluate as
// a formula get a leading quote.
type text string

func (t text) MarshalText() ([]byte, error) {
	if t != "" && strings.ContainsRune("=+-@\t\r", rune(t[0])) {
		return []byte("'" + string(t)), nil
	}
	return []byte(t), nil
}

type row struct {
	ID               string `csv:"id"`
	CompanyName      text   `csv:"company_name"`
	CreatedAt        string `csv:"created_at"`
	MarketingSpend   amount `csv:"marketing_spend"`
	RDSpend          amount `csv:"rd_spend"`
	AdminCosts       amount `csv:"admin_costs"`
	NumEmployees     int    `csv:"num_employees"`
	Region           string `csv:"region"`
	PredictedRevenue amount `csv:"predicted_revenue"`
	R2Score          amount `csv:"r2_score"`
	MAE              amount `csv:"mae"`
	Notes            text   `csv:"notes"`
}

// ErrNoObjectStorage is returned by Export when no bucket is configured.
var ErrNoObjectStorage = errors.New("export: object storage is not configured")

type Exporter struct {
	history HistoryLister
	objects ObjectWriter
	prefix  string
	now     func() time.Time
}

// NewExporter builds an exporter. objects may be nil when only WriteTo is used.
func NewExporter(history HistoryLister, objects ObjectWriter, prefix string) *Exporter {
	return &Exporter{
		history: history,
		objects: objects,
		prefix:  prefix,
		now:     time.Now,
	}
}

// WriteTo writes the owner's history as CSV and returns the number of rows.
func (e *Exporter) WriteTo(ctx context.Context, ownerID string, w io.Writer) (int, error) {
	list, err := e.history.List(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("export history: %w", err)
	}

	rows := make([]row, 0, len(list))
	for _, p := range list {
		rows = append(rows, row{
			ID:               p.ID,
			CompanyName:      text(p.CompanyName),
			CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
			MarketingSpend:   amount(p.Input.MarketingSpend),
			RDSpend:          amount(p.Input.RDSpend),
			AdminCosts:       amount(p.Input.AdminCosts),
			NumEmployees:     p.Input.NumEmployees,
			Region:           string(p.Input.Region),
			PredictedRevenue: amount(p.PredictedRevenue),
			R2Score:          amount(p.Performance.R2Score),
			MAE:              amount(p.Performance.MAE),
			Notes:            text(p.Notes),
		})
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		err = enc.EncodeHeader(row{})
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return 0, fmt.Errorf("encode csv: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows), nil
}

// Export uploads the owner's history under <prefix>/<owner>/<timestamp>.csv.
func (e *Exporter) Export(ctx context.Context, ownerID string) (string, int, error) {
	if e.objects == nil {
		return "", 0, ErrNoObjectStorage
	}

	var buf bytes.Buffer
	n, err := e.WriteTo(ctx, ownerID, &buf)
	if err != nil {
		return "", 0, err
	}

	key := path.Join(e.prefix, ownerID, e.now().UTC().Format("20060102T150405Z")+".csv")
	location, err := e.objects.PutObject(ctx, key, buf.Bytes(), contentType)
	if err != nil {
		return "", 0, fmt.Errorf("export history: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("owner_id", ownerID).
		Str("location", location).
		Int("rows", n).
		Msg("history exported")
	return location, n, nil
}
