package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayofai/dayof-sub002/internal/model"
)

func newTestMemoryRepository() *MemoryRepository {
	r := NewMemoryRepository()
	tick := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return r
}

func TestMemoryRepository_SaveAndGet(t *testing.T) {
	r := newTestMemoryRepository()
	ctx := context.Background()

	saved, err := r.SaveQuote(ctx, model.Quote{ID: "q1", MerchantID: 7, Order: "79927398713", Kind: model.QuoteKindPayNow})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := r.GetQuote(ctx, 7, "q1")
	require.NoError(t, err)
	assert.Equal(t, "79927398713", got.Order)

	_, err = r.GetQuote(ctx, 8, "q1")
	require.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestMemoryRepository_RequoteReplacesPrevious(t *testing.T) {
	r := newTestMemoryRepository()
	ctx := context.Background()

	_, err := r.SaveQuote(ctx, model.Quote{ID: "q1", MerchantID: 7, Order: "42", Kind: model.QuoteKindPaymentPlan, TotalAfterTax: 100})
	require.NoError(t, err)
	_, err = r.SaveQuote(ctx, model.Quote{ID: "q2", MerchantID: 7, Order: "42", Kind: model.QuoteKindPaymentPlan, TotalAfterTax: 200})
	require.NoError(t, err)
	_, err = r.SaveQuote(ctx, model.Quote{ID: "q3", MerchantID: 7, Order: "42", Kind: model.QuoteKindPayNow})
	require.NoError(t, err)

	_, err = r.GetQuote(ctx, 7, "q1")
	require.ErrorIs(t, err, ErrQuoteNotFound)

	list, err := r.ListQuotes(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "q3", list[0].ID)
	assert.Equal(t, "q2", list[1].ID)
}

func TestMemoryRepository_Conflicts(t *testing.T) {
	r := newTestMemoryRepository()
	ctx := context.Background()

	_, err := r.SaveQuote(ctx, model.Quote{ID: "q1", MerchantID: 7, Order: "42", Kind: model.QuoteKindPayNow})
	require.NoError(t, err)

	_, err = r.SaveQuote(ctx, model.Quote{ID: "q2", MerchantID: 8, Order: "42", Kind: model.QuoteKindPayNow})
	require.ErrorIs(t, err, ErrOrderOwnedByAnother)

	_, err = r.SaveQuote(ctx, model.Quote{ID: "q1", MerchantID: 7, Order: "43", Kind: model.QuoteKindPayNow})
	require.ErrorIs(t, err, ErrQuoteExists)
}
