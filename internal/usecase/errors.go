package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// クライアントが切断した（nginx と同じ 499）
const StatusClientClosedRequest = 499

// HTTP層へ返すエラー（ステータスとメッセージ）
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// usecaseのエラーを HTTPError に変換する。変換できなければ false。
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return &HTTPError{Status: http.StatusBadRequest, Message: ve.Error()}, true
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &HTTPError{Status: http.StatusNotFound, Message: "not found"}, true
	case errors.Is(err, ErrConflictRetryExhausted):
		return &HTTPError{Status: http.StatusConflict, Message: "cart is busy, retry"}, true
	case errors.Is(err, ErrNoResolvableItems):
		return &HTTPError{Status: http.StatusBadGateway, Message: "no item could be priced"}, true
	case errors.Is(err, ErrStoreUnavailable):
		return &HTTPError{Status: http.StatusServiceUnavailable, Message: "store unavailable"}, true
	case errors.Is(err, context.DeadlineExceeded):
		return &HTTPError{Status: http.StatusGatewayTimeout, Message: "request timed out"}, true
	case errors.Is(err, context.Canceled):
		return &HTTPError{Status: StatusClientClosedRequest, Message: "request canceled"}, true
	}
	return nil, false
}

var (
	// カートが無い
	ErrNotFound = errors.New("cart not found")

	// DBなどの保存先が使えない。リトライ可能。
	ErrStoreUnavailable = errors.New("cart store unavailable")

	// version衝突のリトライ回数を使い切った。リトライ可能。
	ErrConflictRetryExhausted = errors.New("cart update conflict: retries exhausted")

	// 追加しようとした商品の価格が1件も取れず、カートにも明細が無い
	ErrNoResolvableItems = errors.New("no item could be priced")
)

// 価格が1件も取れず、戻るべき既存明細も無かった。取れなかった商品を持つ。
type UnresolvedItemsError struct {
	Failed []FailedItem
}

func (e *UnresolvedItemsError) Error() string {
	return fmt.Sprintf("%s: %d item(s) failed", ErrNoResolvableItems.Error(), len(e.Failed))
}

func (e *UnresolvedItemsError) Unwrap() error {
	return ErrNoResolvableItems
}

// 入力不正（外部呼び出しの前に弾く）
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
