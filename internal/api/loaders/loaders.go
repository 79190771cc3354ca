package loaders

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/woodsxwu/WalkInNow/internal/domain/entities"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// maxBatch bounds how many clinics one batch queries providers for
const maxBatch = 50

// NextSlotSource computes next slots for a set of clinic IDs
type NextSlotSource interface {
	NextSlotsForClinics(ctx context.Context, ids []string) (map[string]*entities.Slot, error)
}

// Loaders contains the per-request dataloaders
type Loaders struct {
	NextSlotLoader *dataloader.Loader[string, *entities.Slot]
}

// NewLoaders creates loaders backed by source. Loaders cache results, so a
// fresh set must be created for every request.
func NewLoaders(source NextSlotSource) *Loaders {
	return &Loaders{
		NextSlotLoader: dataloader.NewBatchedLoader(
			func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Slot] {
				results := make([]*dataloader.Result[*entities.Slot], len(keys))
				slots, err := source.NextSlotsForClinics(ctx, keys)

				for i, key := range keys {
					if err != nil {
						results[i] = &dataloader.Result[*entities.Slot]{Error: err}
						continue
					}
					// A clinic without availability resolves to nil, not an error.
					results[i] = &dataloader.Result[*entities.Slot]{Data: slots[key]}
				}
				return results
			},
			dataloader.WithBatchCapacity[string, *entities.Slot](maxBatch),
			dataloader.WithWait[string, *entities.Slot](2*time.Millisecond),
		),
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches a fresh set of loaders to every request
func Middleware(source NextSlotSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(source))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
