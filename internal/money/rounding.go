package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrRoundingModeRequired возвращается, если операция изменения масштаба
// вызвана без режима округления.
var ErrRoundingModeRequired = errors.New("rounding mode required")

// RoundingMode задаёт способ округления. Нулевое значение недопустимо.
type RoundingMode int

const (
	// RoundDown отбрасывает лишние разряды (округление к нулю).
	RoundDown RoundingMode = iota + 1
	// RoundHalfUp округляет к ближайшему, половину от нуля.
	RoundHalfUp
)

// String возвращает имя режима округления.
func (m RoundingMode) String() string {
	switch m {
	case RoundDown:
		return "down"
	case RoundHalfUp:
		return "half_up"
	}
	return fmt.Sprintf("RoundingMode(%d)", int(m))
}

func (m RoundingMode) validate() error {
	if m != RoundDown && m != RoundHalfUp {
		return fmt.Errorf("%w: %s", ErrRoundingModeRequired, m)
	}
	return nil
}

func (m RoundingMode) round(d decimal.Decimal, places int32) (decimal.Decimal, error) {
	switch m {
	case RoundDown:
		return d.RoundDown(places), nil
	case RoundHalfUp:
		return d.Round(places), nil
	}
	return decimal.Decimal{}, m.validate()
}

// quotient делит d на divisor с точностью places знаков и округляет результат
// по остатку, без промежуточного усечения.
func (m RoundingMode) quotient(d, divisor decimal.Decimal, places int32) (decimal.Decimal, error) {
	q, r := d.QuoRem(divisor, places)
	switch m {
	case RoundDown:
		return q, nil
	case RoundHalfUp:
		// |r| < |divisor| * 10^-places; половина шага сравнивается через удвоенный остаток.
		step := divisor.Abs().Shift(-places)
		if r.Abs().Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(step) {
			unit := decimal.New(1, -places)
			if d.Sign()*divisor.Sign() < 0 {
				return q.Sub(unit), nil
			}
			return q.Add(unit), nil
		}
		return q, nil
	}
	return decimal.Decimal{}, m.validate()
}

func addInt64(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, a, b)
	}
	return s, nil
}

func subInt64(a, b int64) (int64, error) {
	s := a - b
	if (b > 0 && s > a) || (b < 0 && s < a) {
		return 0, fmt.Errorf("%w: %d - %d", ErrArithmeticOverflow, a, b)
	}
	return s, nil
}

func mulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%w: %d * %d", ErrArithmeticOverflow, a, b)
	}
	p := a * b
	if p/b != a {
		return 0, fmt.Errorf("%w: %d * %d", ErrArithmeticOverflow, a, b)
	}
	return p, nil
}

func pow10(n int32) (int64, error) {
	p := int64(1)
	for i := int32(0); i < n; i++ {
		var err error
		if p, err = mulInt64(p, 10); err != nil {
			return 0, err
		}
	}
	return p, nil
}
