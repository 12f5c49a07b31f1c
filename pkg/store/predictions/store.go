package predictions

import (
	"context"

	"github.com/de-tools/revenuecast/pkg/models/store"
)

// Store persists saved predictions. Every read and delete is scoped to the
// owning user.
type Store interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*store.SavedPrediction, error)
	Add(ctx context.Context, prediction *store.SavedPrediction) error
	// Delete removes the prediction with the given id if it belongs to
	// ownerID and reports whether a row was removed.
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	Stats(ctx context.Context, ownerID string) (*store.PredictionStats, error)
}
