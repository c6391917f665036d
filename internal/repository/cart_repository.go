package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var (
	// 対象が存在しない
	ErrNotFound = errors.New("not found")

	// 保存時に version が一致しなかった（他のリクエストが先に更新した）
	ErrVersionConflict = errors.New("version conflict")
)

// カートドキュメントの保存・取得を約束。owner_idごとに1件だけ。
type CartRepository interface {
	// 無ければ ErrNotFound
	Load(ctx context.Context, ownerID string) (model.Cart, error)
	// Version=0なら新規作成、それ以外は保存済みの version が一致する時だけ全体を置き換える。
	// 成功すると Version を+1したカートを返す。不一致は ErrVersionConflict。
	Save(ctx context.Context, cart model.Cart) (model.Cart, error)
	// 無くてもエラーにしない
	Delete(ctx context.Context, ownerID string) error
}
