// Package model содержит доменные сущности сервиса расчёта оплаты.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/pricing"
)

// QuoteKind описывает способ оплаты, для которого рассчитана котировка.
type QuoteKind string

const (
	QuoteKindPayNow      QuoteKind = "pay_now"
	QuoteKindPaymentPlan QuoteKind = "payment_plan"
)

// Quote описывает сохранённый результат расчёта для заказа мерчанта.
type Quote struct {
	ID            string
	MerchantID    int64
	Order         string
	Product       string
	Kind          QuoteKind
	Currency      string
	TotalAfterTax int64
	Breakdown     json.RawMessage
	CreatedAt     time.Time
}

// QuoteRequest содержит входные данные расчёта от оформления заказа.
type QuoteRequest struct {
	Order    string
	Product  string
	Price    int64
	Upgrade  int64
	Discount pricing.Discount
	Plan     pricing.PlanConfig
}

// ProductFees описывает настройки комиссий продукта.
type ProductFees struct {
	Product           string          `json:"product"`
	BookingFee        int64           `json:"booking_fee"`
	ProcessingPercent decimal.Decimal `json:"processing_percent"`
	PaymentPlanFee    int64           `json:"payment_plan_fee"`
}

// Money описывает сумму в ответах API.
type Money struct {
	Amount     string `json:"amount"`
	MinorUnits int64  `json:"minor_units"`
}

// PayNowView описывает разбивку полной оплаты в ответах API.
type PayNowView struct {
	Currency             string `json:"currency"`
	Price                Money  `json:"price"`
	Upgrade              Money  `json:"upgrade"`
	Subtotal             Money  `json:"subtotal"`
	SubtotalDiscounted   Money  `json:"subtotal_discounted"`
	Discount             Money  `json:"discount"`
	FeeBooking           Money  `json:"fee_booking"`
	FeeProcessing        Money  `json:"fee_processing"`
	FeePaymentPlan       Money  `json:"fee_payment_plan"`
	ApplicationFeePayNow Money  `json:"application_fee_pay_now"`
	TotalFees            Money  `json:"total_fees"`
	TotalBeforeTax       Money  `json:"total_before_tax"`
	Tax                  Money  `json:"tax"`
	TotalAfterTax        Money  `json:"total_after_tax"`
}

// InstallmentView описывает один платёж графика.
type InstallmentView struct {
	Index           int    `json:"index"`
	Date            string `json:"date"`
	AmountBeforeTax Money  `json:"amount_before_tax"`
	Tax             Money  `json:"tax"`
	AmountAfterTax  Money  `json:"amount_after_tax"`
	ApplicationFee  Money  `json:"application_fee"`
}

// ScheduleView описывает график платежей.
type ScheduleView struct {
	Interval      string            `json:"interval"`
	IntervalCount int               `json:"interval_count"`
	Payments      []InstallmentView `json:"payments"`
}

// PaymentPlanView описывает разбивку рассрочки.
type PaymentPlanView struct {
	PayNowView
	TotalBeforeTaxFirstInstallment   Money        `json:"total_before_tax_first_installment"`
	TaxFirstInstallment              Money        `json:"tax_first_installment"`
	TotalAfterTaxFirstInstallment    Money        `json:"total_after_tax_first_installment"`
	ApplicationFeePaymentPlan        Money        `json:"application_fee_payment_plan"`
	ApplicationFeePaymentPlanPercent string       `json:"application_fee_payment_plan_percent"`
	Remainder                        Money        `json:"remainder"`
	Schedule                         ScheduleView `json:"schedule"`
}
