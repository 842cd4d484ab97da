package pricing

import (
	"fmt"
	"strings"
	"time"
)

// ProductType определяет правила первого платежа и расчёта дат.
type ProductType string

const (
	ProductTrip ProductType = "trip"
	ProductCard ProductType = "card"
)

// ParseProductType разбирает тип продукта. Пустая строка означает карту.
func ParseProductType(s string) (ProductType, error) {
	pt := ProductType(strings.ToLower(strings.TrimSpace(s)))
	if pt == "" {
		return ProductCard, nil
	}
	if _, ok := policies[pt]; !ok {
		return "", fmt.Errorf("unknown product type %q", s)
	}
	return pt, nil
}

// minimumFirstInstallment используется как первый платёж для покупок дешевле стандартного
// первого платежа продукта.
const minimumFirstInstallment int64 = 500

// День месяца, на который приходится второй платёж поездки.
const tripPayDay = 10

type productPolicy interface {
	// firstInstallment возвращает стандартный первый платёж в минимальных единицах.
	firstInstallment() int64
	dates(now time.Time, interval Interval, count, n int) []time.Time
}

var policies = map[ProductType]productPolicy{
	ProductTrip: tripPolicy{},
	ProductCard: cardPolicy{},
}

func policyFor(pt ProductType) productPolicy {
	if p, ok := policies[pt]; ok {
		return p
	}
	return cardPolicy{}
}

// tripPolicy ставит первый платёж на сейчас, второй на 10-е число, остальные цепочкой
// от предыдущей даты.
type tripPolicy struct{}

func (tripPolicy) firstInstallment() int64 { return 10000 }

func (tripPolicy) dates(now time.Time, interval Interval, count, n int) []time.Time {
	out := make([]time.Time, 0, n)
	out = append(out, now)
	if n == 1 {
		return out
	}

	y, m, d := now.Date()
	if d >= tripPayDay {
		m++
	}
	prev := time.Date(y, m, tripPayDay, 0, 0, 0, 0, now.Location())
	out = append(out, prev)

	for i := 2; i < n; i++ {
		prev = interval.advance(prev, count)
		out = append(out, prev)
	}
	return out
}

// cardPolicy: каждая дата отсчитывается от момента расчёта.
type cardPolicy struct{}

func (cardPolicy) firstInstallment() int64 { return 4999 }

func (cardPolicy) dates(now time.Time, interval Interval, count, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = interval.advance(now, i*count)
	}
	return out
}
