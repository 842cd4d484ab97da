package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/money"
)

// Точность доли комиссии платформы в платеже.
const applicationFeePercentPlaces = 8

// Schedule описывает график платежей.
type Schedule struct {
	Interval      Interval
	IntervalCount int
	Payments      []Installment
}

// PaymentPlanBreakdown содержит разбивку стоимости при оплате в рассрочку.
type PaymentPlanBreakdown struct {
	Price                money.Amount
	Upgrade              money.Amount
	Subtotal             money.Amount
	SubtotalDiscounted   money.Amount
	Discount             money.Amount
	FeeBooking           money.Amount
	FeeProcessing        money.Amount
	FeePaymentPlan       money.Amount
	ApplicationFeePayNow money.Amount

	// Пересчитаны с учётом остатка распределения. Сумма платежей графика
	// сверяется не с TotalAfterTax, а с Baseline.TotalAfterTax.
	TotalFees      money.Amount
	TotalBeforeTax money.Amount
	Tax            money.Amount
	TotalAfterTax  money.Amount

	TotalBeforeTaxFirstInstallment money.Amount
	TaxFirstInstallment            money.Amount
	TotalAfterTaxFirstInstallment  money.Amount

	ApplicationFeePaymentPlan        money.Amount
	ApplicationFeePaymentPlanPercent decimal.Decimal
	// Remainder удовлетворяет точному тождеству
	// Σ Schedule.Payments[i].AmountAfterTax + Remainder = Baseline.TotalAfterTax.
	Remainder money.Amount
	Schedule  Schedule

	// Разбивка полной оплаты с комиссией за рассрочку, от которой построен
	// график. Её TotalAfterTax и есть сумма, распределённая по платежам.
	Baseline PayNowBreakdown
}

// PaymentPlan рассчитывает стоимость и график платежей для рассрочки.
func (c *Calculator) PaymentPlan(price, upgrade int64, fees FeeInputs, discount Discount, plan PlanConfig) (PaymentPlanBreakdown, error) {
	b, err := c.paymentPlan(price, upgrade, fees, discount, plan)
	if err != nil {
		return PaymentPlanBreakdown{}, fmt.Errorf("calculate payment plan: %w", err)
	}
	return b, nil
}

func (c *Calculator) paymentPlan(price, upgrade int64, fees FeeInputs, discount Discount, plan PlanConfig) (PaymentPlanBreakdown, error) {
	if err := plan.Validate(); err != nil {
		return PaymentPlanBreakdown{}, err
	}

	base, err := c.payNow(price, upgrade, fees, discount, true)
	if err != nil {
		return PaymentPlanBreakdown{}, err
	}

	alloc, err := c.allocate(base.TotalAfterTax, plan.NumberOfInstallments, plan.ProductType)
	if err != nil {
		return PaymentPlanBreakdown{}, err
	}

	l := &ledger{}
	out := PaymentPlanBreakdown{
		Price:                base.Price,
		Upgrade:              base.Upgrade,
		Subtotal:             base.Subtotal,
		SubtotalDiscounted:   base.SubtotalDiscounted,
		Discount:             base.Discount,
		FeeBooking:           base.FeeBooking,
		FeeProcessing:        base.FeeProcessing,
		FeePaymentPlan:       base.FeePaymentPlan,
		ApplicationFeePayNow: base.ApplicationFeePayNow,
		Remainder:            alloc.Remainder,
		Baseline:             base,
	}

	// Остаток распределения переносится в комиссии, чтобы он не был потерян.
	feesBeforeRemainder := l.add(l.add(base.FeeBooking, base.FeePaymentPlan), base.FeeProcessing)
	out.TotalFees = l.sub(feesBeforeRemainder, alloc.Remainder)
	out.TotalBeforeTax = l.add(base.SubtotalDiscounted, out.TotalFees)
	out.Tax = c.tax(l, out.TotalBeforeTax)
	out.TotalAfterTax = l.add(out.TotalBeforeTax, out.Tax)

	first := alloc.Installments[0]
	out.TotalAfterTaxFirstInstallment = first.AmountAfterTax
	out.TotalBeforeTaxFirstInstallment, out.TaxFirstInstallment = c.splitTax(l, first.AmountAfterTax)

	planShare := l.mul(base.FeePaymentPlan, platformShare, money.RoundHalfUp)
	out.ApplicationFeePaymentPlan = l.sub(l.add(base.ApplicationFeePayNow, planShare), alloc.Remainder)

	if l.err != nil {
		return PaymentPlanBreakdown{}, l.err
	}

	out.ApplicationFeePaymentPlanPercent = decimal.Zero
	if !out.TotalAfterTax.IsZero() {
		out.ApplicationFeePaymentPlanPercent = out.ApplicationFeePaymentPlan.Decimal().
			DivRound(out.TotalAfterTax.Decimal(), applicationFeePercentPlaces)
	}

	dates := policyFor(plan.ProductType).dates(c.now(), plan.Interval, plan.IntervalCount, plan.NumberOfInstallments)
	payments := make([]Installment, len(alloc.Installments))
	for i, inst := range alloc.Installments {
		inst.Date = dates[i]
		inst.ApplicationFee = l.mul(inst.AmountAfterTax, out.ApplicationFeePaymentPlanPercent, money.RoundHalfUp)
		payments[i] = inst
	}
	if l.err != nil {
		return PaymentPlanBreakdown{}, l.err
	}

	out.Schedule = Schedule{
		Interval:      plan.Interval,
		IntervalCount: plan.IntervalCount,
		Payments:      payments,
	}
	return out, nil
}
