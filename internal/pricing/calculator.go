// Package pricing рассчитывает стоимость покупки при полной оплате и график
// платежей при оплате в рассрочку.
//
// Все расчёты детерминированы: при одинаковых входных данных и одинаковых
// показаниях часов результат совпадает побитно.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/money"
)

var (
	// ErrInvalidInstallmentCount возвращается, если число платежей меньше единицы.
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	// ErrInvalidInterval возвращается при неизвестном интервале или нулевом шаге.
	ErrInvalidInterval = errors.New("invalid installment interval")
	// ErrInvalidDiscount возвращается при некорректной скидке.
	ErrInvalidDiscount = errors.New("invalid discount")
)

// TaxRate описывает ставку налога как Numerator / 10^Scale.
type TaxRate struct {
	Numerator int64
	Scale     int32
}

// DefaultTaxRate задаёт ставку 7,5%.
var DefaultTaxRate = TaxRate{Numerator: 75, Scale: 3}

// Decimal возвращает ставку в виде десятичной дроби.
func (r TaxRate) Decimal() decimal.Decimal {
	return decimal.New(r.Numerator, -r.Scale)
}

// TaxRateFromDecimal переводит десятичную ставку (0.075 для 7,5%) в TaxRate.
func TaxRateFromDecimal(d decimal.Decimal) (TaxRate, error) {
	if d.IsNegative() {
		return TaxRate{}, fmt.Errorf("negative tax rate %s", d)
	}
	scale := int32(0)
	if d.Exponent() < 0 {
		scale = -d.Exponent()
	}
	// Нулевой Scale зарезервирован под значение по умолчанию.
	if scale == 0 {
		scale = 1
	}
	n := d.Shift(scale)
	if !n.BigInt().IsInt64() {
		return TaxRate{}, fmt.Errorf("%w: tax rate %s", money.ErrArithmeticOverflow, d)
	}
	return TaxRate{Numerator: n.IntPart(), Scale: scale}, nil
}

// Доля платформы в комиссиях за обработку и рассрочку.
var platformShare = decimal.RequireFromString("0.50")

// Calculator рассчитывает разбивки оплаты. После создания не изменяется и
// безопасен для параллельного использования.
type Calculator struct {
	currency string
	scale    int32
	taxRate  TaxRate
	now      func() time.Time
}

// CalculatorConfig задаёт параметры калькулятора. Нулевые значения заменяются
// значениями по умолчанию.
type CalculatorConfig struct {
	Currency string
	Scale    int32
	TaxRate  TaxRate
	Now      func() time.Time
}

// NewCalculator создаёт калькулятор.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	c := &Calculator{
		currency: cfg.Currency,
		scale:    cfg.Scale,
		taxRate:  cfg.TaxRate,
		now:      cfg.Now,
	}
	if c.currency == "" {
		c.currency = "USD"
		c.scale = 2
	}
	if c.taxRate == (TaxRate{}) {
		c.taxRate = DefaultTaxRate
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Currency возвращает код валюты калькулятора.
func (c *Calculator) Currency() string { return c.currency }

// Scale возвращает масштаб сумм калькулятора.
func (c *Calculator) Scale() int32 { return c.scale }

// TaxRate возвращает ставку налога калькулятора.
func (c *Calculator) TaxRate() TaxRate { return c.taxRate }

// Amount создаёт сумму в валюте калькулятора.
func (c *Calculator) Amount(minorUnits int64) money.Amount {
	return money.New(minorUnits, c.currency, c.scale)
}

func (c *Calculator) zero() money.Amount {
	return money.Zero(c.currency, c.scale)
}

// tax начисляет налог на сумму до налога с округлением половины вверх.
func (c *Calculator) tax(l *ledger, beforeTax money.Amount) money.Amount {
	if l.err != nil {
		return c.zero()
	}
	raw, err := beforeTax.MultiplyByRatio(c.taxRate.Numerator, c.taxRate.Scale)
	if err != nil {
		l.err = err
		return c.zero()
	}
	t, err := raw.ChangeScale(c.scale, money.RoundHalfUp)
	if err != nil {
		l.err = err
		return c.zero()
	}
	return t
}

// splitTax раскладывает сумму с налогом на сумму до налога и налог обратным
// применением той же ставки.
func (c *Calculator) splitTax(l *ledger, afterTax money.Amount) (money.Amount, money.Amount) {
	divisor := decimal.NewFromInt(1).Add(c.taxRate.Decimal())
	before := l.div(afterTax, divisor, money.RoundHalfUp)
	return before, l.sub(afterTax, before)
}

// ledger накапливает первую ошибку цепочки денежных операций, чтобы расчёт
// читался как последовательность формул.
type ledger struct {
	err error
}

func (l *ledger) add(a, b money.Amount) money.Amount {
	if l.err != nil {
		return a
	}
	r, err := a.Add(b)
	if err != nil {
		l.err = err
		return a
	}
	return r
}

func (l *ledger) sub(a, b money.Amount) money.Amount {
	if l.err != nil {
		return a
	}
	r, err := a.Sub(b)
	if err != nil {
		l.err = err
		return a
	}
	return r
}

func (l *ledger) mul(a money.Amount, factor decimal.Decimal, mode money.RoundingMode) money.Amount {
	if l.err != nil {
		return a
	}
	r, err := a.MultiplyByDecimal(factor, mode)
	if err != nil {
		l.err = err
		return a
	}
	return r
}

func (l *ledger) div(a money.Amount, divisor decimal.Decimal, mode money.RoundingMode) money.Amount {
	if l.err != nil {
		return a
	}
	r, err := a.DivideByDecimal(divisor, mode)
	if err != nil {
		l.err = err
		return a
	}
	return r
}

func (l *ledger) max(a, b money.Amount) money.Amount {
	if l.err != nil {
		return a
	}
	r, err := money.Max(a, b)
	if err != nil {
		l.err = err
		return a
	}
	return r
}
