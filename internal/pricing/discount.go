package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/money"
)

// DiscountKind определяет вид скидки.
type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountAmount  DiscountKind = "amount"
	DiscountPercent DiscountKind = "percent"
)

var hundred = decimal.NewFromInt(100)

// Discount описывает скидку: фиксированную сумму, процент или её отсутствие.
// Нулевое значение означает отсутствие скидки.
type Discount struct {
	kind    DiscountKind
	amount  int64
	percent decimal.Decimal
}

// NoDiscount возвращает пустую скидку.
func NoDiscount() Discount {
	return Discount{kind: DiscountNone}
}

// AmountDiscount возвращает скидку на фиксированную сумму в минимальных единицах.
func AmountDiscount(minorUnits int64) Discount {
	return Discount{kind: DiscountAmount, amount: minorUnits}
}

// PercentDiscount возвращает процентную скидку (0..100, не более двух знаков после запятой).
func PercentDiscount(percentage decimal.Decimal) Discount {
	return Discount{kind: DiscountPercent, percent: percentage}
}

// Kind возвращает вид скидки.
func (d Discount) Kind() DiscountKind {
	if d.kind == "" {
		return DiscountNone
	}
	return d.kind
}

// AmountMinorUnits возвращает размер фиксированной скидки.
func (d Discount) AmountMinorUnits() int64 { return d.amount }

// Percentage возвращает размер процентной скидки.
func (d Discount) Percentage() decimal.Decimal { return d.percent }

// IsFullComp сообщает, является ли скидка стопроцентной.
func (d Discount) IsFullComp() bool {
	return d.Kind() == DiscountPercent && d.percent.Equal(hundred)
}

func (d Discount) validate() error {
	switch d.Kind() {
	case DiscountNone:
		return nil
	case DiscountAmount:
		if d.amount < 0 {
			return fmt.Errorf("%w: negative amount %d", ErrInvalidDiscount, d.amount)
		}
		return nil
	case DiscountPercent:
		if d.percent.IsNegative() || d.percent.GreaterThan(hundred) {
			return fmt.Errorf("%w: percentage %s out of range", ErrInvalidDiscount, d.percent)
		}
		if !d.percent.Equal(d.percent.Round(2)) {
			return fmt.Errorf("%w: percentage %s has more than 2 decimals", ErrInvalidDiscount, d.percent)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidDiscount, d.kind)
}

// apply возвращает сумму после скидки. Результат никогда не бывает отрицательным.
func (d Discount) apply(l *ledger, subtotal money.Amount) money.Amount {
	switch d.Kind() {
	case DiscountAmount:
		off := money.New(d.amount, subtotal.Currency(), subtotal.Scale())
		return l.max(l.sub(subtotal, off), money.Zero(subtotal.Currency(), subtotal.Scale()))
	case DiscountPercent:
		off := l.mul(subtotal, d.percent.Shift(-2), money.RoundDown)
		return l.sub(subtotal, off)
	}
	return subtotal
}
