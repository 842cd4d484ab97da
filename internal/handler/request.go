package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dayofai/dayof-sub002/internal/model"
	"github.com/dayofai/dayof-sub002/internal/pricing"
)

var errBadRequest = errors.New("bad request")

type discountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type planRequest struct {
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
	Installments  int    `json:"installments"`
	ProductType   string `json:"product_type"`
}

type quoteRequest struct {
	Order    string           `json:"order"`
	Product  string           `json:"product"`
	Price    int64            `json:"price"`
	Upgrade  int64            `json:"upgrade"`
	Discount *discountRequest `json:"discount,omitempty"`
	Plan     *planRequest     `json:"plan,omitempty"`
}

func (d *discountRequest) toDiscount() (pricing.Discount, error) {
	if d == nil {
		return pricing.NoDiscount(), nil
	}

	switch pricing.DiscountKind(strings.ToLower(strings.TrimSpace(d.Type))) {
	case "", pricing.DiscountNone:
		return pricing.NoDiscount(), nil
	case pricing.DiscountAmount:
		if !d.Value.Equal(d.Value.Truncate(0)) || !d.Value.BigInt().IsInt64() {
			return pricing.Discount{}, fmt.Errorf("%w: amount discount must be whole minor units", pricing.ErrInvalidDiscount)
		}
		return pricing.AmountDiscount(d.Value.IntPart()), nil
	case pricing.DiscountPercent:
		return pricing.PercentDiscount(d.Value), nil
	default:
		return pricing.Discount{}, fmt.Errorf("%w: unknown type %q", pricing.ErrInvalidDiscount, d.Type)
	}
}

func (p *planRequest) toPlan() (pricing.PlanConfig, error) {
	if p == nil {
		return pricing.PlanConfig{}, fmt.Errorf("%w: plan is required", errBadRequest)
	}

	interval, err := pricing.ParseInterval(p.Interval)
	if err != nil {
		return pricing.PlanConfig{}, err
	}
	productType, err := pricing.ParseProductType(p.ProductType)
	if err != nil {
		return pricing.PlanConfig{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	count := p.IntervalCount
	if count == 0 {
		count = 1
	}

	plan := pricing.PlanConfig{
		Interval:             interval,
		IntervalCount:        count,
		NumberOfInstallments: p.Installments,
		ProductType:          productType,
	}
	if err := plan.Validate(); err != nil {
		return pricing.PlanConfig{}, err
	}
	return plan, nil
}

func (q quoteRequest) toModel(withPlan bool) (model.QuoteRequest, error) {
	discount, err := q.Discount.toDiscount()
	if err != nil {
		return model.QuoteRequest{}, err
	}

	req := model.QuoteRequest{
		Order:    q.Order,
		Product:  strings.TrimSpace(q.Product),
		Price:    q.Price,
		Upgrade:  q.Upgrade,
		Discount: discount,
	}

	if withPlan {
		plan, err := q.Plan.toPlan()
		if err != nil {
			return model.QuoteRequest{}, err
		}
		req.Plan = plan
	}

	return req, nil
}
