package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// 商品カタログから得た価格と在庫状況
type PriceInfo struct {
	UnitPrice decimal.Decimal
	InStock   bool
}

// 商品カタログの価格参照だけを約束。
// 商品が無い・通信失敗・タイムアウトはすべて error で返す。
type PriceLookup interface {
	LookupPrice(ctx context.Context, itemID string) (PriceInfo, error)
}

// カート表示用の商品情報
type ProductDetails struct {
	ID   string
	Name string
}

// 商品情報の参照だけを約束。失敗しても表示が欠けるだけで金額には使わない。
type ProductDetailsLookup interface {
	LookupDetails(ctx context.Context, itemID string) (ProductDetails, error)
}
