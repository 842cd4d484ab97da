package service

import (
	"time"

	"github.com/dayofai/dayof-sub002/internal/model"
	"github.com/dayofai/dayof-sub002/internal/money"
	"github.com/dayofai/dayof-sub002/internal/pricing"
)

func moneyView(a money.Amount) model.Money {
	return model.Money{Amount: a.String(), MinorUnits: a.MinorUnits()}
}

func renderPayNow(currency string, b pricing.PayNowBreakdown) model.PayNowView {
	return model.PayNowView{
		Currency:             currency,
		Price:                moneyView(b.Price),
		Upgrade:              moneyView(b.Upgrade),
		Subtotal:             moneyView(b.Subtotal),
		SubtotalDiscounted:   moneyView(b.SubtotalDiscounted),
		Discount:             moneyView(b.Discount),
		FeeBooking:           moneyView(b.FeeBooking),
		FeeProcessing:        moneyView(b.FeeProcessing),
		FeePaymentPlan:       moneyView(b.FeePaymentPlan),
		ApplicationFeePayNow: moneyView(b.ApplicationFeePayNow),
		TotalFees:            moneyView(b.TotalFees),
		TotalBeforeTax:       moneyView(b.TotalBeforeTax),
		Tax:                  moneyView(b.Tax),
		TotalAfterTax:        moneyView(b.TotalAfterTax),
	}
}

func renderPaymentPlan(currency string, b pricing.PaymentPlanBreakdown) model.PaymentPlanView {
	payments := make([]model.InstallmentView, 0, len(b.Schedule.Payments))
	for _, p := range b.Schedule.Payments {
		payments = append(payments, model.InstallmentView{
			Index:           p.Index,
			Date:            p.Date.Format(time.RFC3339),
			AmountBeforeTax: moneyView(p.AmountBeforeTax),
			Tax:             moneyView(p.Tax),
			AmountAfterTax:  moneyView(p.AmountAfterTax),
			ApplicationFee:  moneyView(p.ApplicationFee),
		})
	}

	return model.PaymentPlanView{
		PayNowView: model.PayNowView{
			Currency:             currency,
			Price:                moneyView(b.Price),
			Upgrade:              moneyView(b.Upgrade),
			Subtotal:             moneyView(b.Subtotal),
			SubtotalDiscounted:   moneyView(b.SubtotalDiscounted),
			Discount:             moneyView(b.Discount),
			FeeBooking:           moneyView(b.FeeBooking),
			FeeProcessing:        moneyView(b.FeeProcessing),
			FeePaymentPlan:       moneyView(b.FeePaymentPlan),
			ApplicationFeePayNow: moneyView(b.ApplicationFeePayNow),
			TotalFees:            moneyView(b.TotalFees),
			TotalBeforeTax:       moneyView(b.TotalBeforeTax),
			Tax:                  moneyView(b.Tax),
			TotalAfterTax:        moneyView(b.TotalAfterTax),
		},
		TotalBeforeTaxFirstInstallment:   moneyView(b.TotalBeforeTaxFirstInstallment),
		TaxFirstInstallment:              moneyView(b.TaxFirstInstallment),
		TotalAfterTaxFirstInstallment:    moneyView(b.TotalAfterTaxFirstInstallment),
		ApplicationFeePaymentPlan:        moneyView(b.ApplicationFeePaymentPlan),
		ApplicationFeePaymentPlanPercent: b.ApplicationFeePaymentPlanPercent.StringFixed(8),
		Remainder:                        moneyView(b.Remainder),
		Schedule: model.ScheduleView{
			Interval:      string(b.Schedule.Interval),
			IntervalCount: b.Schedule.IntervalCount,
			Payments:      payments,
		},
	}
}
