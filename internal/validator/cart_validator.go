package validator

import (
	"strings"

	"storefront/internal/usecase"
)

const (
	// 1リクエストで追加できる行数
	MaxLinesPerRequest = 100
	// 1行の数量の上限
	MaxCountPerLine = 9999
	// 商品ID・ユーザーIDの最大長
	MaxIDLength = 64
)

type cartValidator struct{}

// Usecaseは interface を依存注入
func NewCartValidator() usecase.CartValidator {
	return &cartValidator{}
}

// ownerが空でないか
func (v *cartValidator) ValidateOwner(ownerID string) error {
	return checkID("owner_id", ownerID)
}

// 追加リクエストを検証
func (v *cartValidator) ValidateAdd(ownerID string, lines []usecase.LineRequest) error {
	if err := v.ValidateOwner(ownerID); err != nil {
		return err
	}

	// 必須チェック
	if len(lines) == 0 {
		return invalid("cart", "at least one item is required")
	}
	if len(lines) > MaxLinesPerRequest {
		return invalid("cart", "too many items")
	}

	for _, l := range lines {
		if err := checkID("item_id", l.ItemID); err != nil {
			return err
		}
		if l.Count < 1 {
			return invalid("count", "must be at least 1")
		}
		if l.Count > MaxCountPerLine {
			return invalid("count", "too large")
		}
	}
	return nil
}

// 明細の指定を検証
func (v *cartValidator) ValidateItem(ownerID string, itemID string) error {
	if err := v.ValidateOwner(ownerID); err != nil {
		return err
	}
	return checkID("item_id", itemID)
}

// 数量変更を検証（0は削除として許可）
func (v *cartValidator) ValidateSetCount(ownerID string, itemID string, count int64) error {
	if err := v.ValidateItem(ownerID, itemID); err != nil {
		return err
	}
	if count < 0 {
		return invalid("count", "must not be negative")
	}
	if count > MaxCountPerLine {
		return invalid("count", "too large")
	}
	return nil
}

func checkID(field string, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(field, "required")
	}
	if len(id) > MaxIDLength {
		return invalid(field, "too long")
	}
	if strings.TrimSpace(id) != id {
		return invalid(field, "must not have surrounding spaces")
	}
	return nil
}

func invalid(field, reason string) error {
	return &usecase.ValidationError{Field: field, Reason: reason}
}
