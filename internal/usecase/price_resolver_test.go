package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type PriceLookupMock struct{ mock.Mock }

func (m *PriceLookupMock) LookupPrice(ctx context.Context, itemID string) (repo.PriceInfo, error) {
	args := m.Called(ctx, itemID)
	info, _ := args.Get(0).(repo.PriceInfo)
	return info, args.Error(1)
}

var _ repo.PriceLookup = (*PriceLookupMock)(nil)

func TestPriceResolver_PartialFailure(t *testing.T) {
	lookup := new(PriceLookupMock)
	lookup.On("LookupPrice", mock.Anything, "A").Return(repo.PriceInfo{UnitPrice: d("10"), InStock: true}, nil)
	lookup.On("LookupPrice", mock.Anything, "B").Return(repo.PriceInfo{}, errors.New("boom"))
	lookup.On("LookupPrice", mock.Anything, "C").Return(repo.PriceInfo{UnitPrice: d("30"), InStock: true}, nil)

	r := NewPriceResolver(lookup, time.Second, 4, nil)
	got := r.Resolve(context.Background(), []string{"A", "B", "C"})

	require.Len(t, got, 3)
	assert.False(t, got["A"].Failed)
	assert.True(t, got["A"].UnitPrice.Equal(d("10")))
	assert.True(t, got["B"].Failed)
	assert.Equal(t, ReasonUnavailable, got["B"].Reason)
	assert.False(t, got["C"].Failed)
	lookup.AssertExpectations(t)
}

// 1件がタイムアウトしても他は成功する
func TestPriceResolver_TimeoutIsPerItem(t *testing.T) {
	lookup := new(PriceLookupMock)
	lookup.On("LookupPrice", mock.Anything, "slow").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return(repo.PriceInfo{}, context.DeadlineExceeded)
	lookup.On("LookupPrice", mock.Anything, "fast").Return(repo.PriceInfo{UnitPrice: d("1"), InStock: true}, nil)

	r := NewPriceResolver(lookup, 30*time.Millisecond, 4, nil)

	start := time.Now()
	got := r.Resolve(context.Background(), []string{"slow", "fast"})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, got["slow"].Failed)
	assert.False(t, got["fast"].Failed)
}

func TestPriceResolver_OutOfStockAndInvalidPrice(t *testing.T) {
	lookup := new(PriceLookupMock)
	lookup.On("LookupPrice", mock.Anything, "gone").Return(repo.PriceInfo{UnitPrice: d("5"), InStock: false}, nil)
	lookup.On("LookupPrice", mock.Anything, "neg").Return(repo.PriceInfo{UnitPrice: d("-1"), InStock: true}, nil)

	r := NewPriceResolver(lookup, time.Second, 2, nil)
	got := r.Resolve(context.Background(), []string{"gone", "neg"})

	assert.True(t, got["gone"].Failed)
	assert.Equal(t, ReasonOutOfStock, got["gone"].Reason)
	assert.True(t, got["neg"].Failed)
	assert.Equal(t, ReasonInvalidPrice, got["neg"].Reason)
}

// 重複したIDは1回だけ問い合わせる
func TestPriceResolver_DeduplicatesIDs(t *testing.T) {
	lookup := new(PriceLookupMock)
	lookup.On("LookupPrice", mock.Anything, "A").Return(repo.PriceInfo{UnitPrice: d("1"), InStock: true}, nil).Once()

	r := NewPriceResolver(lookup, time.Second, 2, nil)
	got := r.Resolve(context.Background(), []string{"A", "A", "A"})

	assert.Len(t, got, 1)
	lookup.AssertNumberOfCalls(t, "LookupPrice", 1)
}

func TestPriceResolver_Empty(t *testing.T) {
	lookup := new(PriceLookupMock)
	r := NewPriceResolver(lookup, time.Second, 2, nil)

	got := r.Resolve(context.Background(), nil)

	assert.Empty(t, got)
	lookup.AssertNotCalled(t, "LookupPrice", mock.Anything, mock.Anything)
}
