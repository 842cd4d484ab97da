// Package service реализует бизнес-логику расчёта котировок.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayofai/dayof-sub002/internal/model"
	"github.com/dayofai/dayof-sub002/internal/pricing"
	"github.com/dayofai/dayof-sub002/internal/validation"
)

var (
	// ErrInvalidOrder возвращается, если номер заказа не проходит проверку.
	ErrInvalidOrder = errors.New("invalid order reference")
	// ErrFeeScheduleUnavailable возвращается, если каталог комиссий недоступен.
	ErrFeeScheduleUnavailable = errors.New("fee schedule unavailable")
)

// defaultListLimit ограничивает число котировок в списке.
const defaultListLimit = 100

// Repository описывает контракт хранилища котировок, используемый сервисом.
type Repository interface {
	Close() error
	SaveQuote(ctx context.Context, q model.Quote) (model.Quote, error)
	GetQuote(ctx context.Context, merchantID int64, id string) (*model.Quote, error)
	ListQuotes(ctx context.Context, merchantID int64, limit int) ([]model.Quote, error)
}

// FeeSchedule описывает источник комиссий продуктов.
type FeeSchedule interface {
	GetProductFees(ctx context.Context, product string) (*model.ProductFees, int, time.Duration, error)
}

// Service содержит бизнес-логику расчёта котировок.
type Service struct {
	repo     Repository
	calc     *pricing.Calculator
	fees     FeeSchedule
	defaults model.ProductFees
	interval time.Duration

	mu    sync.RWMutex
	cache map[string]model.ProductFees
}

// NewService создаёт сервис. fees может быть nil: тогда для всех продуктов
// используются комиссии по умолчанию.
func NewService(repo Repository, calc *pricing.Calculator, fees FeeSchedule, defaults model.ProductFees, refreshInterval time.Duration) *Service {
	if refreshInterval <= 0 {
		refreshInterval = time.Minute
	}
	return &Service{
		repo:     repo,
		calc:     calc,
		fees:     fees,
		defaults: defaults,
		interval: refreshInterval,
		cache:    make(map[string]model.ProductFees),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// QuotePayNow рассчитывает и сохраняет котировку полной оплаты.
func (s *Service) QuotePayNow(ctx context.Context, merchantID int64, req model.QuoteRequest) (*model.Quote, error) {
	order, ok := validation.NormalizeOrderReference(req.Order)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, req.Order)
	}
	req.Order = order

	fees, err := s.ResolveFees(ctx, req.Product)
	if err != nil {
		return nil, err
	}

	b, err := s.calc.PayNow(req.Price, req.Upgrade, fees, req.Discount)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, merchantID, req, model.QuoteKindPayNow, b.TotalAfterTax.MinorUnits(), renderPayNow(s.calc.Currency(), b))
}

// QuotePaymentPlan рассчитывает и сохраняет котировку рассрочки.
func (s *Service) QuotePaymentPlan(ctx context.Context, merchantID int64, req model.QuoteRequest) (*model.Quote, error) {
	order, ok := validation.NormalizeOrderReference(req.Order)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, req.Order)
	}
	req.Order = order

	fees, err := s.ResolveFees(ctx, req.Product)
	if err != nil {
		return nil, err
	}

	b, err := s.calc.PaymentPlan(req.Price, req.Upgrade, fees, req.Discount, req.Plan)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, merchantID, req, model.QuoteKindPaymentPlan, b.TotalAfterTax.MinorUnits(), renderPaymentPlan(s.calc.Currency(), b))
}

func (s *Service) save(ctx context.Context, merchantID int64, req model.QuoteRequest, kind model.QuoteKind, total int64, view any) (*model.Quote, error) {
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}

	q, err := s.repo.SaveQuote(ctx, model.Quote{
		ID:            uuid.NewString(),
		MerchantID:    merchantID,
		Order:         req.Order,
		Product:       req.Product,
		Kind:          kind,
		Currency:      s.calc.Currency(),
		TotalAfterTax: total,
		Breakdown:     raw,
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQuote возвращает сохранённую котировку мерчанта.
func (s *Service) GetQuote(ctx context.Context, merchantID int64, id string) (*model.Quote, error) {
	return s.repo.GetQuote(ctx, merchantID, id)
}

// ListQuotes возвращает последние котировки мерчанта.
func (s *Service) ListQuotes(ctx context.Context, merchantID int64) ([]model.Quote, error) {
	return s.repo.ListQuotes(ctx, merchantID, defaultListLimit)
}

// ResolveFees возвращает комиссии продукта: из кэша, из каталога или по умолчанию.
func (s *Service) ResolveFees(ctx context.Context, product string) (pricing.FeeInputs, error) {
	pf, err := s.productFees(ctx, product)
	if err != nil {
		return pricing.FeeInputs{}, err
	}
	return pricing.FeeInputs{
		BookingFee:        s.calc.Amount(pf.BookingFee),
		ProcessingPercent: pf.ProcessingPercent,
		PaymentPlanFee:    s.calc.Amount(pf.PaymentPlanFee),
	}, nil
}

func (s *Service) productFees(ctx context.Context, product string) (model.ProductFees, error) {
	if product == "" || s.fees == nil {
		return s.defaults, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[product]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	pf, status, _, err := s.fees.GetProductFees(ctx, product)
	if err != nil {
		return model.ProductFees{}, fmt.Errorf("%w: fetch fees for %q: %v", ErrFeeScheduleUnavailable, product, err)
	}
	if pf == nil {
		if status == http.StatusTooManyRequests {
			return model.ProductFees{}, fmt.Errorf("%w: fetch fees for %q: rate limited", ErrFeeScheduleUnavailable, product)
		}
		// Продукт отсутствует в каталоге.
		return s.defaults, nil
	}

	s.mu.Lock()
	s.cache[product] = *pf
	s.mu.Unlock()
	return *pf, nil
}

// StartFeeScheduleUpdates запускает фоновое обновление закэшированных комиссий.
// Блокируется до отмены контекста.
func (s *Service) StartFeeScheduleUpdates(ctx context.Context) {
	if s.fees == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshFees(ctx)
		}
	}
}

func (s *Service) refreshFees(ctx context.Context) {
	s.mu.RLock()
	products := make([]string, 0, len(s.cache))
	for p := range s.cache {
		products = append(products, p)
	}
	s.mu.RUnlock()

	for _, product := range products {
		pf, status, retryAfter, err := s.fees.GetProductFees(ctx, product)
		if err != nil {
			continue
		}

		if status == http.StatusTooManyRequests {
			if retryAfter > 0 {
				timer := time.NewTimer(retryAfter)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			continue
		}

		s.mu.Lock()
		if pf == nil {
			delete(s.cache, product)
		} else {
			s.cache[product] = *pf
		}
		s.mu.Unlock()
	}
}
