package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品サービスの products テーブル（価格・商品名の参照用、読み取りのみ）
// 論理削除の列は持たない。公開停止は is_active で見る。
type Product struct {
	ID        string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	IsActive  bool            `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
