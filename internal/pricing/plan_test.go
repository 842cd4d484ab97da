package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func afterTaxAmounts(payments []Installment) []int64 {
	out := make([]int64, len(payments))
	for i, p := range payments {
		out[i] = p.AmountAfterTax.MinorUnits()
	}
	return out
}

func TestAllocate_CardThreeInstallments(t *testing.T) {
	c := newTestCalculator(fixedNow)

	alloc, err := c.Allocate(PayNowBreakdown{TotalAfterTax: usd(11610)}, 3, ProductCard)
	require.NoError(t, err)

	assert.Equal(t, []int64{4999, 3305, 3305}, afterTaxAmounts(alloc.Installments))
	assert.Equal(t, usd(1), alloc.Remainder)

	first := alloc.Installments[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, usd(4650), first.AmountBeforeTax)
	assert.Equal(t, usd(349), first.Tax)

	second := alloc.Installments[1]
	assert.Equal(t, usd(3074), second.AmountBeforeTax)
	assert.Equal(t, usd(231), second.Tax)
}

func TestAllocate_FirstInstallmentClamp(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		n       int
		product ProductType
		want    []int64
	}{
		{name: "card at default", total: 4999, n: 2, product: ProductCard, want: []int64{4999, 0}},
		{name: "card above default", total: 5000, n: 2, product: ProductCard, want: []int64{4999, 1}},
		{name: "card below default", total: 4000, n: 2, product: ProductCard, want: []int64{500, 3500}},
		{name: "card below minimum", total: 300, n: 2, product: ProductCard, want: []int64{300, 0}},
		{name: "trip below default", total: 9000, n: 3, product: ProductTrip, want: []int64{500, 4250, 4250}},
		{name: "trip single installment", total: 25000, n: 1, product: ProductTrip, want: []int64{10000}},
		{name: "zero total", total: 0, n: 3, product: ProductCard, want: []int64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(fixedNow)

			alloc, err := c.Allocate(PayNowBreakdown{TotalAfterTax: usd(tt.total)}, tt.n, tt.product)
			require.NoError(t, err)

			assert.Equal(t, tt.want, afterTaxAmounts(alloc.Installments))

			var sum int64
			for _, v := range tt.want {
				sum += v
			}
			assert.Equal(t, tt.total-sum, alloc.Remainder.MinorUnits())
		})
	}
}

func TestAllocate_InvalidCount(t *testing.T) {
	c := newTestCalculator(fixedNow)

	_, err := c.Allocate(PayNowBreakdown{TotalAfterTax: usd(100)}, 0, ProductCard)
	require.ErrorIs(t, err, ErrInvalidInstallmentCount)
}

func TestPaymentPlan_Card(t *testing.T) {
	c := newTestCalculator(fixedNow)

	b, err := c.PaymentPlan(10000, 0, standardFees(), NoDiscount(), PlanConfig{
		Interval:             IntervalMonth,
		IntervalCount:        1,
		NumberOfInstallments: 3,
		ProductType:          ProductCard,
	})
	require.NoError(t, err)

	assert.Equal(t, usd(11610), b.Baseline.TotalAfterTax)
	assert.Equal(t, usd(1), b.Remainder)
	assert.Equal(t, usd(799), b.TotalFees)
	assert.Equal(t, usd(10799), b.TotalBeforeTax)
	assert.Equal(t, usd(810), b.Tax)
	assert.Equal(t, usd(11609), b.TotalAfterTax)

	assert.Equal(t, usd(4999), b.TotalAfterTaxFirstInstallment)
	assert.Equal(t, usd(4650), b.TotalBeforeTaxFirstInstallment)
	assert.Equal(t, usd(349), b.TaxFirstInstallment)

	assert.Equal(t, usd(149), b.ApplicationFeePaymentPlan)
	assert.True(t, decimal.RequireFromString("0.01283487").Equal(b.ApplicationFeePaymentPlanPercent),
		"percent = %s", b.ApplicationFeePaymentPlanPercent)

	require.Len(t, b.Schedule.Payments, 3)
	assert.Equal(t, IntervalMonth, b.Schedule.Interval)
	assert.Equal(t, 1, b.Schedule.IntervalCount)

	wantFees := []int64{64, 42, 42}
	wantDates := []time.Time{
		fixedNow,
		time.Date(2026, time.November, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 15, 12, 0, 0, 0, time.UTC),
	}
	for i, p := range b.Schedule.Payments {
		assert.Equal(t, usd(wantFees[i]), p.ApplicationFee, "installment %d", i+1)
		assert.True(t, wantDates[i].Equal(p.Date), "installment %d date = %s", i+1, p.Date)
	}
}

func TestPaymentPlan_TripWithPlanFee(t *testing.T) {
	c := newTestCalculator(fixedNow)
	fees := standardFees()
	fees.PaymentPlanFee = usd(1000)

	b, err := c.PaymentPlan(10000, 0, fees, NoDiscount(), PlanConfig{
		Interval:             IntervalMonth,
		IntervalCount:        1,
		NumberOfInstallments: 4,
		ProductType:          ProductTrip,
	})
	require.NoError(t, err)

	assert.Equal(t, usd(1800), b.Baseline.TotalFees)
	assert.Equal(t, usd(12685), b.Baseline.TotalAfterTax)
	assert.Equal(t, []int64{10000, 895, 895, 895}, afterTaxAmounts(b.Schedule.Payments))
	assert.Equal(t, usd(0), b.Remainder)
	assert.Equal(t, usd(1800), b.TotalFees)
	assert.Equal(t, usd(12685), b.TotalAfterTax)

	assert.Equal(t, usd(9302), b.TotalBeforeTaxFirstInstallment)
	assert.Equal(t, usd(698), b.TaxFirstInstallment)

	assert.Equal(t, usd(650), b.ApplicationFeePaymentPlan)
	assert.True(t, decimal.RequireFromString("0.05124162").Equal(b.ApplicationFeePaymentPlanPercent))

	var feeSum int64
	for _, p := range b.Schedule.Payments {
		feeSum += p.ApplicationFee.MinorUnits()
	}
	assert.Equal(t, int64(512), b.Schedule.Payments[0].ApplicationFee.MinorUnits())
	assert.Equal(t, int64(650), feeSum)

	wantDates := []time.Time{
		fixedNow,
		time.Date(2026, time.November, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, p := range b.Schedule.Payments {
		assert.True(t, wantDates[i].Equal(p.Date), "installment %d date = %s", i+1, p.Date)
	}
}

func TestPaymentPlan_FullCompHasZeroPercent(t *testing.T) {
	c := newTestCalculator(fixedNow)
	fees := standardFees()
	fees.PaymentPlanFee = usd(1000)

	b, err := c.PaymentPlan(10000, 0, fees, PercentDiscount(decimal.NewFromInt(100)), PlanConfig{
		Interval:             IntervalWeek,
		IntervalCount:        2,
		NumberOfInstallments: 3,
		ProductType:          ProductCard,
	})
	require.NoError(t, err)

	assert.True(t, b.TotalAfterTax.IsZero())
	assert.True(t, b.ApplicationFeePaymentPlanPercent.IsZero())
	for _, p := range b.Schedule.Payments {
		assert.True(t, p.AmountAfterTax.IsZero())
		assert.True(t, p.ApplicationFee.IsZero())
	}
}

func TestPaymentPlan_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		plan    PlanConfig
		wantErr error
	}{
		{
			name:    "zero installments",
			plan:    PlanConfig{Interval: IntervalMonth, IntervalCount: 1, NumberOfInstallments: 0},
			wantErr: ErrInvalidInstallmentCount,
		},
		{
			name:    "unknown interval",
			plan:    PlanConfig{Interval: "fortnight", IntervalCount: 1, NumberOfInstallments: 2},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "zero interval count",
			plan:    PlanConfig{Interval: IntervalDay, IntervalCount: 0, NumberOfInstallments: 2},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "too many installments",
			plan:    PlanConfig{Interval: IntervalDay, IntervalCount: 1, NumberOfInstallments: 1 << 50},
			wantErr: ErrInvalidInstallmentCount,
		},
		{
			name:    "one installment over the limit",
			plan:    PlanConfig{Interval: IntervalMonth, IntervalCount: 1, NumberOfInstallments: MaxInstallments + 1},
			wantErr: ErrInvalidInstallmentCount,
		},
		{
			name:    "interval count too large",
			plan:    PlanConfig{Interval: IntervalDay, IntervalCount: 1 << 40, NumberOfInstallments: 2},
			wantErr: ErrInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCalculator(fixedNow)

			_, err := c.PaymentPlan(10000, 0, standardFees(), NoDiscount(), tt.plan)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPaymentPlan_Reconciles(t *testing.T) {
	c := newTestCalculator(fixedNow)
	fees := FeeInputs{
		BookingFee:        usd(350),
		ProcessingPercent: decimal.RequireFromString("2.9"),
		PaymentPlanFee:    usd(799),
	}
	discounts := []Discount{
		NoDiscount(),
		AmountDiscount(1234),
		PercentDiscount(decimal.RequireFromString("33.33")),
	}

	for _, price := range []int64{0, 299, 4999, 12345, 250000, 1999999} {
		for _, n := range []int{1, 2, 3, 7, 12} {
			for _, pt := range []ProductType{ProductTrip, ProductCard} {
				for di, d := range discounts {
					name := fmt.Sprintf("%d/%d/%s/%d", price, n, pt, di)
					t.Run(name, func(t *testing.T) {
						b, err := c.PaymentPlan(price, 0, fees, d, PlanConfig{
							Interval:             IntervalMonth,
							IntervalCount:        1,
							NumberOfInstallments: n,
							ProductType:          pt,
						})
						require.NoError(t, err)
						require.Len(t, b.Schedule.Payments, n)

						sum := usd(0)
						for _, p := range b.Schedule.Payments {
							sum, err = sum.Add(p.AmountAfterTax)
							require.NoError(t, err)

							split, err := p.AmountBeforeTax.Add(p.Tax)
							require.NoError(t, err)
							assert.Equal(t, p.AmountAfterTax, split)
						}

						want, err := b.Baseline.TotalAfterTax.Sub(b.Remainder)
						require.NoError(t, err)
						assert.Equal(t, want, sum)
						assert.GreaterOrEqual(t, b.SubtotalDiscounted.Sign(), 0)

						again, err := c.PaymentPlan(price, 0, fees, d, PlanConfig{
							Interval:             IntervalMonth,
							IntervalCount:        1,
							NumberOfInstallments: n,
							ProductType:          pt,
						})
						require.NoError(t, err)
						assert.Equal(t, b, again)
					})
				}
			}
		}
	}
}

func TestPaymentPlan_MaxLimitsAccepted(t *testing.T) {
	c := newTestCalculator(fixedNow)

	b, err := c.PaymentPlan(1000000, 0, standardFees(), NoDiscount(), PlanConfig{
		Interval:             IntervalDay,
		IntervalCount:        MaxIntervalCount,
		NumberOfInstallments: MaxInstallments,
	})
	require.NoError(t, err)
	require.Len(t, b.Schedule.Payments, MaxInstallments)
	assert.Equal(t, fixedNow.AddDate(0, 0, (MaxInstallments-1)*MaxIntervalCount), b.Schedule.Payments[MaxInstallments-1].Date)
}

func TestAllocate_RejectsTooManyInstallments(t *testing.T) {
	c := newTestCalculator(fixedNow)

	_, err := c.Allocate(PayNowBreakdown{TotalAfterTax: usd(11610)}, MaxInstallments+1, ProductCard)
	require.ErrorIs(t, err, ErrInvalidInstallmentCount)
}

func TestPaymentPlan_Idempotent(t *testing.T) {
	c := newTestCalculator(fixedNow)
	fees := standardFees()
	fees.PaymentPlanFee = usd(1000)
	plan := PlanConfig{Interval: IntervalWeek, IntervalCount: 2, NumberOfInstallments: 5, ProductType: ProductTrip}

	a, err := c.PaymentPlan(12345, 678, fees, PercentDiscount(decimal.NewFromInt(15)), plan)
	require.NoError(t, err)
	b, err := c.PaymentPlan(12345, 678, fees, PercentDiscount(decimal.NewFromInt(15)), plan)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
