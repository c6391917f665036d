package usecase

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 金額は小数2桁で丸める（四捨五入、0から遠い方へ）
const moneyScale = 2

// 税率と割引率（設定値で固定）
type Pricing struct {
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
}

// ComputeTotals は明細から金額を計算する。
// 割引を先に小計へ適用し、税は割引後の金額に掛ける:
//
//	discount = round(subtotal × DiscountRate)
//	tax      = round((subtotal − discount) × TaxRate)
//	total    = subtotal − discount + tax
//
// 明細が空なら全て0。
func (p Pricing) ComputeTotals(items []model.CartItem) model.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = subtotal.Round(moneyScale)

	discount := subtotal.Mul(p.DiscountRate).Round(moneyScale)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(p.TaxRate).Round(moneyScale)

	return model.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    taxable.Add(tax),
	}
}
