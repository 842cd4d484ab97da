// Package handler содержит HTTP-обработчики API сервиса расчёта оплаты.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dayofai/dayof-sub002/internal/middleware"
	"github.com/dayofai/dayof-sub002/internal/model"
	"github.com/dayofai/dayof-sub002/internal/money"
	"github.com/dayofai/dayof-sub002/internal/pricing"
	"github.com/dayofai/dayof-sub002/internal/repository"
	"github.com/dayofai/dayof-sub002/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	QuotePayNow(ctx context.Context, merchantID int64, req model.QuoteRequest) (*model.Quote, error)
	QuotePaymentPlan(ctx context.Context, merchantID int64, req model.QuoteRequest) (*model.Quote, error)
	GetQuote(ctx context.Context, merchantID int64, id string) (*model.Quote, error)
	ListQuotes(ctx context.Context, merchantID int64) ([]model.Quote, error)
}

// Handler реализует HTTP-обработчики API котировок.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type quoteResponse struct {
	ID            string          `json:"id"`
	Order         string          `json:"order"`
	Product       string          `json:"product,omitempty"`
	Kind          string          `json:"kind"`
	Currency      string          `json:"currency"`
	TotalAfterTax int64           `json:"total_after_tax"`
	CreatedAt     string          `json:"created_at"`
	Breakdown     json.RawMessage `json:"breakdown"`
}

func newQuoteResponse(q model.Quote) quoteResponse {
	return quoteResponse{
		ID:            q.ID,
		Order:         q.Order,
		Product:       q.Product,
		Kind:          string(q.Kind),
		Currency:      q.Currency,
		TotalAfterTax: q.TotalAfterTax,
		CreatedAt:     q.CreatedAt.Format(time.RFC3339),
		Breakdown:     q.Breakdown,
	}
}

// PayNow рассчитывает котировку полной оплаты.
func (h *Handler) PayNow(w http.ResponseWriter, r *http.Request) {
	h.quote(w, r, false)
}

// PaymentPlan рассчитывает котировку оплаты в рассрочку.
func (h *Handler) PaymentPlan(w http.ResponseWriter, r *http.Request) {
	h.quote(w, r, true)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request, withPlan bool) {
	merchantID, ok := middleware.GetMerchantIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var body quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if body.Order == "" || body.Price < 0 || body.Upgrade < 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	req, err := body.toModel(withPlan)
	if err != nil {
		h.writeError(w, err, zap.String("order", body.Order))
		return
	}

	var q *model.Quote
	if withPlan {
		q, err = h.service.QuotePaymentPlan(r.Context(), merchantID, req)
	} else {
		q, err = h.service.QuotePayNow(r.Context(), merchantID, req)
	}
	if err != nil {
		h.writeError(w, err, zap.Int64("merchantID", merchantID), zap.String("order", body.Order))
		return
	}

	h.writeJSON(w, http.StatusOK, newQuoteResponse(*q))
}

// GetQuote возвращает сохранённую котировку по идентификатору.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.GetMerchantIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	q, err := h.service.GetQuote(r.Context(), merchantID, id)
	if err != nil {
		h.writeError(w, err, zap.String("quote", id))
		return
	}

	h.writeJSON(w, http.StatusOK, newQuoteResponse(*q))
}

// ListQuotes возвращает последние котировки текущего мерчанта.
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.GetMerchantIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	quotes, err := h.service.ListQuotes(r.Context(), merchantID)
	if err != nil {
		h.writeError(w, err, zap.Int64("merchantID", merchantID))
		return
	}

	if len(quotes) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, newQuoteResponse(q))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Health отвечает 200, пока процесс принимает запросы.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, pricing.ErrInvalidInstallmentCount),
		errors.Is(err, pricing.ErrInvalidInterval),
		errors.Is(err, pricing.ErrInvalidDiscount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, money.ErrArithmeticOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrOrderOwnedByAnother):
		return http.StatusConflict
	case errors.Is(err, service.ErrFeeScheduleUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fields ...zap.Field) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("quote request error", append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}
