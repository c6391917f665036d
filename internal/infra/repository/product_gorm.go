package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// 商品テーブルから価格を引く（商品サービスとDBを共有する構成向け）
type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開中の商品の価格と在庫を返す
func (r *ProductGormRepository) LookupPrice(ctx context.Context, itemID string) (repo.PriceInfo, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", itemID, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.PriceInfo{}, repo.ErrNotFound
	}
	if err != nil {
		return repo.PriceInfo{}, err
	}

	return repo.PriceInfo{
		UnitPrice: p.Price,
		InStock:   p.Quantity > 0,
	}, nil
}

// 商品名を返す。表示用なので公開停止中の商品も返す
func (r *ProductGormRepository) LookupDetails(ctx context.Context, itemID string) (repo.ProductDetails, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id = ?", itemID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ProductDetails{}, repo.ErrNotFound
	}
	if err != nil {
		return repo.ProductDetails{}, err
	}

	return repo.ProductDetails{ID: p.ID, Name: p.Name}, nil
}
