package usecase

import "storefront/internal/domain/model"

// 追加リクエストの1行（商品IDと追加数量）
type LineRequest struct {
	ItemID string
	Count  int64
}

// 価格が取れず追加できなかった商品
type FailedItem struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// 既存カートに追加リクエストを合算する（existingは書き換えない）。
//   - 既にある商品は数量を加算し、単価は追加時点のまま
//   - 無い商品は価格取得に成功した時だけ末尾に追加
//   - 価格取得に失敗した新規商品はスキップして failed に1回だけ入れる
func MergeCart(existing model.Cart, incoming []LineRequest, quotes map[string]PriceQuote) (model.Cart, []FailedItem) {
	merged := existing
	merged.Items = existing.CloneItems()

	var failed []FailedItem
	reported := make(map[string]struct{})

	for _, in := range incoming {
		if idx := merged.IndexOf(in.ItemID); idx >= 0 {
			merged.Items[idx].Count += in.Count
			continue
		}

		q, ok := quotes[in.ItemID]
		if !ok || q.Failed {
			if _, dup := reported[in.ItemID]; !dup {
				reported[in.ItemID] = struct{}{}
				reason := ReasonUnavailable
				if ok && q.Reason != "" {
					reason = q.Reason
				}
				failed = append(failed, FailedItem{ItemID: in.ItemID, Reason: reason})
			}
			continue
		}

		merged.Items = append(merged.Items, model.CartItem{
			ItemID:    in.ItemID,
			Count:     in.Count,
			UnitPrice: q.UnitPrice,
		})
	}

	return merged, failed
}

// 既存カートに無い商品IDだけを返す（価格を問い合わせる対象）
func newItemIDs(existing model.Cart, incoming []LineRequest) []string {
	ids := make([]string, 0, len(incoming))
	for _, in := range incoming {
		if existing.IndexOf(in.ItemID) < 0 {
			ids = append(ids, in.ItemID)
		}
	}
	return uniqueIDs(ids)
}
