package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/money"
)

// FeeInputs содержит настройки комиссий продукта.
//
// Незаполненные суммы (нулевое значение money.Amount) считаются нулём в валюте
// калькулятора.
type FeeInputs struct {
	BookingFee        money.Amount
	ProcessingPercent decimal.Decimal
	PaymentPlanFee    money.Amount
}

// PayNowBreakdown содержит итоговую разбивку стоимости при полной оплате.
type PayNowBreakdown struct {
	Price                money.Amount
	Upgrade              money.Amount
	Subtotal             money.Amount
	SubtotalDiscounted   money.Amount
	Discount             money.Amount
	FeeBooking           money.Amount
	FeeProcessing        money.Amount
	FeePaymentPlan       money.Amount
	ApplicationFeePayNow money.Amount
	TotalFees            money.Amount
	TotalBeforeTax       money.Amount
	Tax                  money.Amount
	TotalAfterTax        money.Amount
}

// PayNow рассчитывает стоимость при полной оплате.
//
// Комиссия за рассрочку учитывается в разбивке, но не входит в TotalFees.
func (c *Calculator) PayNow(price, upgrade int64, fees FeeInputs, discount Discount) (PayNowBreakdown, error) {
	b, err := c.payNow(price, upgrade, fees, discount, false)
	if err != nil {
		return PayNowBreakdown{}, fmt.Errorf("calculate pay now: %w", err)
	}
	return b, nil
}

func (c *Calculator) payNow(price, upgrade int64, fees FeeInputs, discount Discount, withPlanFee bool) (PayNowBreakdown, error) {
	if err := discount.validate(); err != nil {
		return PayNowBreakdown{}, err
	}

	l := &ledger{}
	b := PayNowBreakdown{
		Price:   c.Amount(price),
		Upgrade: c.Amount(upgrade),
	}

	b.Subtotal = l.add(b.Price, b.Upgrade)
	b.SubtotalDiscounted = discount.apply(l, b.Subtotal)
	b.Discount = l.sub(b.Subtotal, b.SubtotalDiscounted)

	b.FeeBooking = c.orZero(fees.BookingFee)
	b.FeePaymentPlan = c.orZero(fees.PaymentPlanFee)
	percent := fees.ProcessingPercent
	if discount.IsFullComp() {
		b.FeeBooking = c.zero()
		b.FeePaymentPlan = c.zero()
		percent = decimal.Zero
	}

	b.FeeProcessing = l.mul(b.SubtotalDiscounted, percent.Shift(-2), money.RoundDown)
	b.TotalFees = l.add(b.FeeBooking, b.FeeProcessing)
	if withPlanFee {
		b.TotalFees = l.add(b.TotalFees, b.FeePaymentPlan)
	}
	b.ApplicationFeePayNow = l.mul(b.FeeProcessing, platformShare, money.RoundHalfUp)

	b.TotalBeforeTax = l.add(b.SubtotalDiscounted, b.TotalFees)
	b.Tax = c.tax(l, b.TotalBeforeTax)
	b.TotalAfterTax = l.add(b.TotalBeforeTax, b.Tax)

	if l.err != nil {
		return PayNowBreakdown{}, l.err
	}
	return b, nil
}

func (c *Calculator) orZero(a money.Amount) money.Amount {
	if a == (money.Amount{}) {
		return c.zero()
	}
	return a
}
