package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格（UnitPrice）を必ず保存。Count は常に1以上。
type CartItem struct {
	ItemID    string          `json:"item_id"`
	Count     int64           `json:"count"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// 小計（数量×単価）
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Count))
}
