package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1つ（owner_idでユニーク）
// items は明細をまとめて1列に保存するドキュメント形式。
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID   string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"owner_id"`
	Items     []CartItem `gorm:"type:jsonb;not null;serializer:json" json:"items"`
	Totals    Totals     `gorm:"embedded" json:"totals"`
	Version   int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 未保存（Version=0）かどうか
func (c Cart) IsNew() bool {
	return c.Version == 0
}

// ItemIDで明細の位置を返す（無ければ-1）
func (c Cart) IndexOf(itemID string) int {
	for i, it := range c.Items {
		if it.ItemID == itemID {
			return i
		}
	}
	return -1
}

// 明細をコピーして返す。呼び出し側で書き換えても元のカートに影響しない。
func (c Cart) CloneItems() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// カートの金額集計
type Totals struct {
	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"tax"`
	Discount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discount"`
	Total    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
}

// 全項目が一致するか
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.Tax.Equal(o.Tax) &&
		t.Discount.Equal(o.Discount) &&
		t.Total.Equal(o.Total)
}
