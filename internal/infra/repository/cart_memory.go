package repository

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メモリ上のカート保存先（開発・テスト用）。プロセスが落ちると消える。
type CartMemoryRepository struct {
	mu    sync.Mutex
	carts map[string]model.Cart
	now   func() time.Time
}

// DI
func NewCartMemoryRepository() *CartMemoryRepository {
	return &CartMemoryRepository{
		carts: make(map[string]model.Cart),
		now:   time.Now,
	}
}

func (r *CartMemoryRepository) Load(ctx context.Context, ownerID string) (model.Cart, error) {
	if err := ctx.Err(); err != nil {
		return model.Cart{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[ownerID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	cart.Items = cart.CloneItems()
	return cart, nil
}

func (r *CartMemoryRepository) Save(ctx context.Context, cart model.Cart) (model.Cart, error) {
	if err := ctx.Err(); err != nil {
		return model.Cart{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.carts[cart.OwnerID]
	if cart.IsNew() && exists {
		return model.Cart{}, repo.ErrVersionConflict
	}
	if !cart.IsNew() && (!exists || cur.Version != cart.Version) {
		return model.Cart{}, repo.ErrVersionConflict
	}

	now := r.now()
	next := cart
	next.Items = cart.CloneItems()
	next.Version = cart.Version + 1
	next.UpdatedAt = now
	if cart.IsNew() {
		next.CreatedAt = now
	}
	r.carts[cart.OwnerID] = next

	out := next
	out.Items = next.CloneItems()
	return out, nil
}

func (r *CartMemoryRepository) Delete(ctx context.Context, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, ownerID)
	return nil
}
