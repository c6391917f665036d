package catalog

import (
	"context"
	"fmt"
	"net/http"

	repo "storefront/internal/repository"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// 商品サービスの GET /api/product/:id のレスポンス（必要な項目だけ）
type productResponse struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// 商品サービスへHTTPで価格・商品名を問い合わせる。リトライはしない。
type HTTPClient struct {
	client *resty.Client
}

// DI
func NewHTTPClient(baseURL string) *HTTPClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	return &HTTPClient{client: c}
}

// タイムアウトは呼び出し側の ctx に任せる
func (c *HTTPClient) LookupPrice(ctx context.Context, itemID string) (repo.PriceInfo, error) {
	body, err := c.getProduct(ctx, itemID)
	if err != nil {
		return repo.PriceInfo{}, err
	}

	return repo.PriceInfo{
		UnitPrice: body.Price,
		InStock:   body.Quantity > 0,
	}, nil
}

// カート表示用に商品名を取る
func (c *HTTPClient) LookupDetails(ctx context.Context, itemID string) (repo.ProductDetails, error) {
	body, err := c.getProduct(ctx, itemID)
	if err != nil {
		return repo.ProductDetails{}, err
	}

	id := body.ID
	if id == "" {
		id = itemID
	}
	return repo.ProductDetails{ID: id, Name: body.Name}, nil
}

func (c *HTTPClient) getProduct(ctx context.Context, itemID string) (productResponse, error) {
	var body productResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", itemID).
		SetResult(&body).
		Get("/api/product/{id}")
	if err != nil {
		return productResponse{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return productResponse{}, repo.ErrNotFound
	}
	if resp.IsError() {
		return productResponse{}, fmt.Errorf("catalog: unexpected status %d", resp.StatusCode())
	}
	return body, nil
}
