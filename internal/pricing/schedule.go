package pricing

import (
	"fmt"
	"strings"
	"time"
)

// Interval задаёт единицу шага между платежами.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ParseInterval разбирает строковое представление интервала.
func ParseInterval(s string) (Interval, error) {
	i := Interval(strings.ToLower(strings.TrimSpace(s)))
	if err := i.validate(); err != nil {
		return "", err
	}
	return i, nil
}

func (i Interval) validate() error {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidInterval, string(i))
}

// advance сдвигает дату на n интервалов. Месяцы прибавляются с привязкой к
// последнему дню месяца: 31 января + 1 месяц = 28 (29) февраля.
func (i Interval) advance(t time.Time, n int) time.Time {
	switch i {
	case IntervalDay:
		return t.AddDate(0, 0, n)
	case IntervalWeek:
		return t.AddDate(0, 0, 7*n)
	case IntervalMonth:
		return addMonths(t, n)
	}
	return t
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

const (
	// MaxInstallments ограничивает число платежей в плане.
	MaxInstallments = 120
	// MaxIntervalCount ограничивает шаг между платежами в единицах интервала.
	MaxIntervalCount = 365
)

// PlanConfig описывает параметры рассрочки.
type PlanConfig struct {
	Interval             Interval
	IntervalCount        int
	NumberOfInstallments int
	ProductType          ProductType
}

// Validate проверяет параметры плана до расчёта.
func (p PlanConfig) Validate() error {
	if p.NumberOfInstallments < 1 || p.NumberOfInstallments > MaxInstallments {
		return fmt.Errorf("%w: %d", ErrInvalidInstallmentCount, p.NumberOfInstallments)
	}
	if err := p.Interval.validate(); err != nil {
		return err
	}
	if p.IntervalCount < 1 || p.IntervalCount > MaxIntervalCount {
		return fmt.Errorf("%w: interval count %d", ErrInvalidInterval, p.IntervalCount)
	}
	return nil
}

// ScheduleDates возвращает даты платежей для плана, начиная с момента now.
func ScheduleDates(now time.Time, plan PlanConfig) ([]time.Time, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return policyFor(plan.ProductType).dates(now, plan.Interval, plan.IntervalCount, plan.NumberOfInstallments), nil
}
