package usecase

import (
	"context"
	"sync"
	"time"

	repo "storefront/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 明細に付ける商品情報
type ProductSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// カート表示用に商品情報を並行で集める。
// 取れなかった商品は結果に入らないだけで、エラーにはしない。
type DetailsResolver struct {
	lookup        repo.ProductDetailsLookup
	timeout       time.Duration
	maxConcurrent int
	log           *zap.Logger
}

// DI
func NewDetailsResolver(lookup repo.ProductDetailsLookup, timeout time.Duration, maxConcurrent int, log *zap.Logger) *DetailsResolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DetailsResolver{
		lookup:        lookup,
		timeout:       timeout,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

func (r *DetailsResolver) Resolve(ctx context.Context, itemIDs []string) map[string]ProductSummary {
	ids := uniqueIDs(itemIDs)
	out := make(map[string]ProductSummary, len(ids))
	if len(ids) == 0 {
		return out
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)

	for _, id := range ids {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			d, err := r.lookup.LookupDetails(lctx, id)
			if err != nil {
				r.log.Debug("product details lookup failed", zap.String("item_id", id), zap.Error(err))
				return nil
			}

			mu.Lock()
			out[id] = ProductSummary{ID: id, Name: d.Name}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}
