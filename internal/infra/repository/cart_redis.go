package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// Redisに1ユーザー1キーでカートをJSON保存する。
// 更新は WATCH/MULTI で version を確認してから書く。
type CartRedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// DI。ttl=0なら期限なし
func NewCartRedisRepository(rdb *redis.Client, ttl time.Duration) *CartRedisRepository {
	return &CartRedisRepository{rdb: rdb, ttl: ttl}
}

func cartKey(ownerID string) string {
	return cartKeyPrefix + ownerID
}

func (r *CartRedisRepository) Load(ctx context.Context, ownerID string) (model.Cart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartRedisRepository) Save(ctx context.Context, cart model.Cart) (model.Cart, error) {
	key := cartKey(cart.OwnerID)

	now := time.Now()
	next := cart
	next.Version = cart.Version + 1
	next.UpdatedAt = now
	if cart.IsNew() {
		next.CreatedAt = now
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return model.Cart{}, err
	}

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		//保存済みの version を確認
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if !cart.IsNew() {
				return repo.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			if cart.IsNew() {
				return repo.ErrVersionConflict
			}
			var cur model.Cart
			if err := json.Unmarshal(raw, &cur); err != nil {
				return err
			}
			if cur.Version != cart.Version {
				return repo.ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	//WATCH中に他が書いた
	if errors.Is(err, redis.TxFailedErr) {
		return model.Cart{}, repo.ErrVersionConflict
	}
	if err != nil {
		return model.Cart{}, err
	}
	return next, nil
}

func (r *CartRedisRepository) Delete(ctx context.Context, ownerID string) error {
	return r.rdb.Del(ctx, cartKey(ownerID)).Err()
}
