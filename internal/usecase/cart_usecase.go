package usecase

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 入力チェックの約束（実装は validator パッケージ）
type CartValidator interface {
	ValidateOwner(ownerID string) error
	ValidateAdd(ownerID string, lines []LineRequest) error
	ValidateItem(ownerID string, itemID string) error
	ValidateSetCount(ownerID string, itemID string, count int64) error
}

// 新しいカートのIDを作る
type IDGenerator interface {
	NewID() string
}

// CartView は HTTP層へ返すカートの形です。
// price は unit_price（追加時点の価格）を返します。
type CartView struct {
	OwnerID  string          `json:"owner_id"`
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// 明細1行。Product は GetCart で取れた時だけ入る（金額には使わない）。
type CartLine struct {
	model.CartItem
	Product *ProductSummary `json:"product,omitempty"`
}

// 追加結果。価格が取れなかった商品は Failed に入る。
type MergeResult struct {
	Cart   CartView     `json:"cart"`
	Failed []FailedItem `json:"failed"`
}

type CartOptions struct {
	Pricing Pricing
	// version衝突時に load→merge→save をやり直す回数
	MaxRetries int
	// nilなら GetCart で商品情報を付けない
	Details *DetailsResolver
}

// CartUsecase は /cart の業務ロジックです。
// 同じ owner への更新は ownerLocks で直列化し、保存は version 付きで行います。
type CartUsecase struct {
	carts     repo.CartRepository
	prices    *PriceResolver
	details   *DetailsResolver
	validator CartValidator
	idGen     IDGenerator
	pricing   Pricing
	retries   int
	locks     *ownerLocks
	log       *zap.Logger
}

// DI
func NewCartUsecase(
	carts repo.CartRepository,
	prices *PriceResolver,
	validator CartValidator,
	idGen IDGenerator,
	opts CartOptions,
	log *zap.Logger,
) *CartUsecase {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{
		carts:     carts,
		prices:    prices,
		details:   opts.Details,
		validator: validator,
		idGen:     idGen,
		pricing:   opts.Pricing,
		retries:   opts.MaxRetries,
		locks:     newOwnerLocks(),
		log:       log,
	}
}

// AddOrMergeItems はカートに商品を追加する（同一商品は数量加算）。
// 新しく入る商品だけ価格を取得し、取れなかった商品は結果の Failed で返す。
func (u *CartUsecase) AddOrMergeItems(ctx context.Context, ownerID string, lines []LineRequest) (MergeResult, error) {
	if err := u.validator.ValidateAdd(ownerID, lines); err != nil {
		return MergeResult{}, err
	}

	// リトライしても同じ商品へは問い合わせない
	quotes := make(map[string]PriceQuote)
	var failed []FailedItem

	saved, err := u.mutate(ctx, ownerID, func(cart model.Cart, found bool) (model.Cart, bool, error) {
		if !found {
			cart = model.Cart{ID: u.idGen.NewID(), OwnerID: ownerID}
		}

		var pending []string
		for _, id := range newItemIDs(cart, lines) {
			if _, ok := quotes[id]; !ok {
				pending = append(pending, id)
			}
		}
		for id, q := range u.prices.Resolve(ctx, pending) {
			quotes[id] = q
		}
		if err := ctx.Err(); err != nil {
			return model.Cart{}, false, err
		}

		merged, f := MergeCart(cart, lines, quotes)
		failed = f
		if !touchesCart(cart, lines, quotes) {
			// 既存明細があればそのまま返す（書かない）
			if len(cart.Items) == 0 {
				return model.Cart{}, false, &UnresolvedItemsError{Failed: f}
			}
			u.log.Info("cart unchanged, no item could be priced",
				zap.String("owner_id", ownerID),
				zap.Int("failed", len(f)),
			)
			return cart, false, nil
		}
		if len(failed) > 0 {
			u.log.Info("cart merge with unresolved items",
				zap.String("owner_id", ownerID),
				zap.Int("failed", len(failed)),
			)
		}
		return merged, true, nil
	})
	if err != nil {
		return MergeResult{}, err
	}

	if failed == nil {
		failed = []FailedItem{}
	}
	return MergeResult{Cart: u.view(saved), Failed: failed}, nil
}

// GetCart はカートを返す。無ければ空のカートを返す（保存はしない）。
// 保存済みの金額は使わず、明細から計算し直す。商品情報は取れた明細にだけ付ける。
func (u *CartUsecase) GetCart(ctx context.Context, ownerID string) (CartView, error) {
	if err := u.validator.ValidateOwner(ownerID); err != nil {
		return CartView{}, err
	}

	cart, err := u.carts.Load(ctx, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return u.view(model.Cart{OwnerID: ownerID}), nil
	}
	if err != nil {
		return CartView{}, storeError("load cart", err)
	}

	out := u.view(cart)
	if u.details != nil && len(cart.Items) > 0 {
		ids := make([]string, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ItemID)
		}
		found := u.details.Resolve(ctx, ids)
		for i := range out.Items {
			if p, ok := found[out.Items[i].ItemID]; ok {
				out.Items[i].Product = &p
			}
		}
	}
	return out, nil
}

// RemoveItem は明細を1行削除する。
// カートが無ければ ErrNotFound、明細が無いだけなら何も書かずに成功。
func (u *CartUsecase) RemoveItem(ctx context.Context, ownerID string, itemID string) (CartView, error) {
	if err := u.validator.ValidateItem(ownerID, itemID); err != nil {
		return CartView{}, err
	}

	saved, err := u.mutate(ctx, ownerID, func(cart model.Cart, found bool) (model.Cart, bool, error) {
		if !found {
			return model.Cart{}, false, ErrNotFound
		}
		idx := cart.IndexOf(itemID)
		if idx < 0 {
			return cart, false, nil
		}

		items := cart.CloneItems()
		cart.Items = append(items[:idx], items[idx+1:]...)
		return cart, true, nil
	})
	if err != nil {
		return CartView{}, err
	}

	return u.view(saved), nil
}

// SetItemCount は明細の数量を置き換える（0なら削除）。単価はそのまま。
func (u *CartUsecase) SetItemCount(ctx context.Context, ownerID string, itemID string, count int64) (CartView, error) {
	if err := u.validator.ValidateSetCount(ownerID, itemID, count); err != nil {
		return CartView{}, err
	}

	saved, err := u.mutate(ctx, ownerID, func(cart model.Cart, found bool) (model.Cart, bool, error) {
		if !found {
			return model.Cart{}, false, ErrNotFound
		}
		idx := cart.IndexOf(itemID)
		if idx < 0 {
			return model.Cart{}, false, ErrNotFound
		}

		items := cart.CloneItems()
		if count == 0 {
			items = append(items[:idx], items[idx+1:]...)
		} else {
			items[idx].Count = count
		}
		cart.Items = items
		return cart, true, nil
	})
	if err != nil {
		return CartView{}, err
	}

	return u.view(saved), nil
}

// EmptyCart はカートを削除する。既に無くても成功。
func (u *CartUsecase) EmptyCart(ctx context.Context, ownerID string) error {
	if err := u.validator.ValidateOwner(ownerID); err != nil {
		return err
	}

	release := u.locks.acquire(ownerID)
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.carts.Delete(ctx, ownerID); err != nil {
		return storeError("delete cart", err)
	}
	return nil
}

// mutate は owner のロックを持ったまま load → fn → 金額再計算 → save を行う。
// fn が write=false を返したら保存しない。version衝突なら最初からやり直す。
func (u *CartUsecase) mutate(
	ctx context.Context,
	ownerID string,
	fn func(cart model.Cart, found bool) (model.Cart, bool, error),
) (model.Cart, error) {
	release := u.locks.acquire(ownerID)
	defer release()

	for attempt := 0; attempt <= u.retries; attempt++ {
		cart, err := u.carts.Load(ctx, ownerID)
		found := true
		if errors.Is(err, repo.ErrNotFound) {
			found = false
			cart = model.Cart{}
		} else if err != nil {
			return model.Cart{}, storeError("load cart", err)
		}

		next, write, err := fn(cart, found)
		if err != nil {
			return model.Cart{}, err
		}
		next.Totals = u.pricing.ComputeTotals(next.Items)
		if !write {
			return next, nil
		}

		// 保存が唯一のコミット点。キャンセル済みなら書かない。
		if err := ctx.Err(); err != nil {
			return model.Cart{}, err
		}

		saved, err := u.carts.Save(ctx, next)
		if errors.Is(err, repo.ErrVersionConflict) {
			u.log.Warn("cart version conflict, retrying",
				zap.String("owner_id", ownerID),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return model.Cart{}, storeError("save cart", err)
		}
		return saved, nil
	}

	return model.Cart{}, ErrConflictRetryExhausted
}

// 金額は毎回明細から計算し直して返す
func (u *CartUsecase) view(cart model.Cart) CartView {
	t := u.pricing.ComputeTotals(cart.Items)
	lines := make([]CartLine, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, CartLine{CartItem: it})
	}
	return CartView{
		OwnerID:  cart.OwnerID,
		Items:    lines,
		Subtotal: t.Subtotal,
		Tax:      t.Tax,
		Discount: t.Discount,
		Total:    t.Total,
	}
}

// 1行でも既存明細への加算か、価格の取れた新規追加があれば true
func touchesCart(cart model.Cart, lines []LineRequest, quotes map[string]PriceQuote) bool {
	for _, in := range lines {
		if cart.IndexOf(in.ItemID) >= 0 {
			return true
		}
		if q, ok := quotes[in.ItemID]; ok && !q.Failed {
			return true
		}
	}
	return false
}

func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
