// Package money реализует денежные суммы с фиксированной точкой.
//
// Сумма хранится как целое число минимальных единиц, явный масштаб (число
// знаков после запятой) и код валюты. Двоичная плавающая точка не используется.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrArithmeticOverflow возвращается, если результат не помещается в int64.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrCurrencyOrScaleMismatch возвращается при попытке сложить или сравнить суммы
	// с разной валютой или разным масштабом.
	ErrCurrencyOrScaleMismatch = errors.New("currency or scale mismatch")
	// ErrDivisionByZero возвращается при делении на ноль.
	ErrDivisionByZero = errors.New("division by zero")
)

// Amount описывает неизменяемую денежную сумму.
type Amount struct {
	minor    int64
	scale    int32
	currency string
}

// New создаёт сумму из минимальных единиц, кода валюты и масштаба.
func New(minorUnits int64, currency string, scale int32) Amount {
	return Amount{minor: minorUnits, scale: scale, currency: currency}
}

// Zero возвращает нулевую сумму в указанной валюте и масштабе.
func Zero(currency string, scale int32) Amount {
	return Amount{scale: scale, currency: currency}
}

// MinorUnits возвращает сумму в минимальных единицах.
func (a Amount) MinorUnits() int64 { return a.minor }

// Scale возвращает число знаков после запятой.
func (a Amount) Scale() int32 { return a.scale }

// Currency возвращает код валюты.
func (a Amount) Currency() string { return a.currency }

// IsZero сообщает, равна ли сумма нулю.
func (a Amount) IsZero() bool { return a.minor == 0 }

// Sign возвращает -1, 0 или 1 в зависимости от знака суммы.
func (a Amount) Sign() int {
	switch {
	case a.minor < 0:
		return -1
	case a.minor > 0:
		return 1
	}
	return 0
}

// Equal сообщает, совпадают ли валюта, масштаб и значение.
func (a Amount) Equal(b Amount) bool {
	return a == b
}

func (a Amount) compatible(b Amount) error {
	if a.currency != b.currency || a.scale != b.scale {
		return fmt.Errorf("%w: %s/%d vs %s/%d", ErrCurrencyOrScaleMismatch, a.currency, a.scale, b.currency, b.scale)
	}
	return nil
}

// Add возвращает сумму a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.compatible(b); err != nil {
		return Amount{}, err
	}
	v, err := addInt64(a.minor, b.minor)
	if err != nil {
		return Amount{}, err
	}
	return a.with(v), nil
}

// Sub возвращает разность a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.compatible(b); err != nil {
		return Amount{}, err
	}
	v, err := subInt64(a.minor, b.minor)
	if err != nil {
		return Amount{}, err
	}
	return a.with(v), nil
}

// Cmp сравнивает суммы и возвращает -1, 0 или 1.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.compatible(b); err != nil {
		return 0, err
	}
	switch {
	case a.minor < b.minor:
		return -1, nil
	case a.minor > b.minor:
		return 1, nil
	}
	return 0, nil
}

// Max возвращает большую из двух сумм.
func Max(a, b Amount) (Amount, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return Amount{}, err
	}
	if c < 0 {
		return b, nil
	}
	return a, nil
}

// MultiplyByRatio умножает сумму на numerator / 10^denominatorScale без округления.
// Масштаб результата увеличивается на denominatorScale.
func (a Amount) MultiplyByRatio(numerator int64, denominatorScale int32) (Amount, error) {
	if denominatorScale < 0 {
		return Amount{}, fmt.Errorf("negative denominator scale %d", denominatorScale)
	}
	v, err := mulInt64(a.minor, numerator)
	if err != nil {
		return Amount{}, err
	}
	return Amount{minor: v, scale: a.scale + denominatorScale, currency: a.currency}, nil
}

// MultiplyByDecimal умножает сумму на произвольный десятичный множитель и
// возвращает результат в исходном масштабе, округлённый режимом mode.
func (a Amount) MultiplyByDecimal(factor decimal.Decimal, mode RoundingMode) (Amount, error) {
	if err := mode.validate(); err != nil {
		return Amount{}, err
	}
	return FromDecimal(a.Decimal().Mul(factor), a.currency, a.scale, mode)
}

// DivideByDecimal делит сумму на десятичный делитель и округляет частное до
// исходного масштаба режимом mode.
func (a Amount) DivideByDecimal(divisor decimal.Decimal, mode RoundingMode) (Amount, error) {
	if err := mode.validate(); err != nil {
		return Amount{}, err
	}
	if divisor.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	q, err := mode.quotient(a.Decimal(), divisor, a.scale)
	if err != nil {
		return Amount{}, err
	}
	return FromDecimal(q, a.currency, a.scale, mode)
}

// ChangeScale переводит сумму в новый масштаб. При уменьшении масштаба
// значение округляется режимом mode.
func (a Amount) ChangeScale(scale int32, mode RoundingMode) (Amount, error) {
	if err := mode.validate(); err != nil {
		return Amount{}, err
	}
	if scale < 0 {
		return Amount{}, fmt.Errorf("negative scale %d", scale)
	}
	if scale >= a.scale {
		p, err := pow10(scale - a.scale)
		if err != nil {
			return Amount{}, err
		}
		v, err := mulInt64(a.minor, p)
		if err != nil {
			return Amount{}, err
		}
		return Amount{minor: v, scale: scale, currency: a.currency}, nil
	}
	return FromDecimal(a.Decimal(), a.currency, scale, mode)
}

// Decimal возвращает сумму в основных единицах валюты.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.minor, -a.scale)
}

// FromDecimal округляет десятичное значение до масштаба scale и возвращает сумму.
func FromDecimal(d decimal.Decimal, currency string, scale int32, mode RoundingMode) (Amount, error) {
	rounded, err := mode.round(d, scale)
	if err != nil {
		return Amount{}, err
	}
	bi := rounded.Shift(scale).BigInt()
	if !bi.IsInt64() {
		return Amount{}, fmt.Errorf("%w: %s", ErrArithmeticOverflow, d.String())
	}
	return Amount{minor: bi.Int64(), scale: scale, currency: currency}, nil
}

// String возвращает сумму в виде десятичной строки с фиксированным числом знаков.
func (a Amount) String() string {
	return a.Decimal().StringFixed(a.scale)
}

func (a Amount) with(minor int64) Amount {
	return Amount{minor: minor, scale: a.scale, currency: a.currency}
}
