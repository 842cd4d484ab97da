package pricing

import (
	"fmt"
	"time"

	"github.com/dayofai/dayof-sub002/internal/money"
)

// Installment описывает один платёж графика.
type Installment struct {
	Index           int
	AmountBeforeTax money.Amount
	Tax             money.Amount
	AmountAfterTax  money.Amount
	ApplicationFee  money.Amount
	Date            time.Time
}

// Allocation содержит результат распределения суммы по платежам.
type Allocation struct {
	Installments []Installment
	// Разница между итогом и суммой платежей, со знаком.
	Remainder money.Amount
}

// Allocate распределяет TotalAfterTax разбивки на n платежей по правилам типа продукта.
//
// Остаток от целочисленного деления не распределяется по платежам, а
// возвращается в Remainder.
func (c *Calculator) Allocate(b PayNowBreakdown, n int, productType ProductType) (Allocation, error) {
	a, err := c.allocate(b.TotalAfterTax, n, productType)
	if err != nil {
		return Allocation{}, fmt.Errorf("allocate installments: %w", err)
	}
	return a, nil
}

func (c *Calculator) allocate(total money.Amount, n int, productType ProductType) (Allocation, error) {
	if n < 1 || n > MaxInstallments {
		return Allocation{}, fmt.Errorf("%w: %d", ErrInvalidInstallmentCount, n)
	}

	first := firstInstallmentAmount(total.MinorUnits(), policyFor(productType))
	amounts := make([]int64, n)
	amounts[0] = first

	if rest := n - 1; rest > 0 {
		remaining := total.MinorUnits() - first
		base := floorDiv(remaining, int64(rest))
		for i := 1; i < n; i++ {
			amounts[i] = base
		}
	}

	l := &ledger{}
	out := Allocation{Installments: make([]Installment, 0, n)}
	sum := money.Zero(total.Currency(), total.Scale())
	for i, v := range amounts {
		after := money.New(v, total.Currency(), total.Scale())
		before, tax := c.splitTax(l, after)
		out.Installments = append(out.Installments, Installment{
			Index:           i + 1,
			AmountBeforeTax: before,
			Tax:             tax,
			AmountAfterTax:  after,
		})
		sum = l.add(sum, after)
	}
	out.Remainder = l.sub(total, sum)

	if l.err != nil {
		return Allocation{}, l.err
	}
	return out, nil
}

// firstInstallmentAmount возвращает первый платёж. Если покупка дешевле
// стандартного первого платежа, берётся минимальный первый платёж, но не больше
// самой покупки.
func firstInstallmentAmount(total int64, policy productPolicy) int64 {
	first := policy.firstInstallment()
	if total >= first {
		return first
	}
	first = minimumFirstInstallment
	if first > total {
		first = max(total, 0)
	}
	return first
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
