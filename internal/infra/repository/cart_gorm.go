package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得
func (r *CartGormRepository) Load(ctx context.Context, ownerID string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カートを丸ごと保存（明細と金額を同時に書く）
func (r *CartGormRepository) Save(ctx context.Context, cart model.Cart) (model.Cart, error) {
	now := time.Now()
	next := cart
	next.Version = cart.Version + 1
	next.UpdatedAt = now
	if next.Items == nil {
		next.Items = []model.CartItem{}
	}

	//新規作成。owner_idが既にあれば他のリクエストが先に作った
	if cart.IsNew() {
		next.CreatedAt = now
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "owner_id"}}, DoNothing: true}).
			Create(&next)
		if res.Error != nil {
			return model.Cart{}, res.Error
		}
		if res.RowsAffected == 0 {
			return model.Cart{}, repo.ErrVersionConflict
		}
		return next, nil
	}

	//versionが一致する時だけ置き換える
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("owner_id = ? AND version = ?", cart.OwnerID, cart.Version).
		Select("items", "subtotal", "tax", "discount", "total", "version", "updated_at").
		Updates(&next)
	if res.Error != nil {
		return model.Cart{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Cart{}, repo.ErrVersionConflict
	}
	return next, nil
}

// カートを削除。無くてもエラーにしない
func (r *CartGormRepository) Delete(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.Cart{}).Error
}
