package usecase

import (
	"context"
	"sync"
	"time"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 価格取得に失敗した理由
const (
	ReasonUnavailable  = "unavailable"
	ReasonOutOfStock   = "out_of_stock"
	ReasonInvalidPrice = "invalid_price"
)

// 1商品分の価格取得結果。リクエストごとに作り直し、キャッシュしない。
type PriceQuote struct {
	ItemID    string
	UnitPrice decimal.Decimal
	InStock   bool
	Failed    bool
	Reason    string
}

// 商品カタログへ並行に価格を問い合わせる。
type PriceResolver struct {
	lookup        repo.PriceLookup
	timeout       time.Duration
	maxConcurrent int
	log           *zap.Logger
}

// DI
func NewPriceResolver(lookup repo.PriceLookup, timeout time.Duration, maxConcurrent int, log *zap.Logger) *PriceResolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PriceResolver{
		lookup:        lookup,
		timeout:       timeout,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Resolve は itemIDs（重複は1回だけ問い合わせ）の価格を取得する。
// 1件の失敗・タイムアウトはその商品だけ Failed にし、全体は止めない。
func (r *PriceResolver) Resolve(ctx context.Context, itemIDs []string) map[string]PriceQuote {
	ids := uniqueIDs(itemIDs)
	out := make(map[string]PriceQuote, len(ids))
	if len(ids) == 0 {
		return out
	}

	var mu sync.Mutex
	// goroutineはエラーを返さないので、ctxのキャンセルが他へ波及しない
	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)

	for _, id := range ids {
		g.Go(func() error {
			q := r.resolveOne(ctx, id)

			mu.Lock()
			out[id] = q
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r *PriceResolver) resolveOne(ctx context.Context, itemID string) PriceQuote {
	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.lookup.LookupPrice(lctx, itemID)
	if err != nil {
		r.log.Warn("price lookup failed", zap.String("item_id", itemID), zap.Error(err))
		return PriceQuote{ItemID: itemID, Failed: true, Reason: ReasonUnavailable}
	}
	if info.UnitPrice.IsNegative() {
		return PriceQuote{ItemID: itemID, Failed: true, Reason: ReasonInvalidPrice}
	}
	if !info.InStock {
		return PriceQuote{ItemID: itemID, UnitPrice: info.UnitPrice, Failed: true, Reason: ReasonOutOfStock}
	}

	return PriceQuote{ItemID: itemID, UnitPrice: info.UnitPrice, InStock: true}
}

// 順序を保ったまま重複を除く
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
