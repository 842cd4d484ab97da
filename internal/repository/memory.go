package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dayofai/dayof-sub002/internal/model"
)

type orderKey struct {
	order string
	kind  model.QuoteKind
}

// MemoryRepository хранит котировки в памяти процесса. Используется для
// локального запуска без БД и в тестах.
type MemoryRepository struct {
	mu      sync.Mutex
	quotes  map[string]model.Quote
	byOrder map[orderKey]string
	now     func() time.Time
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		quotes:  make(map[string]model.Quote),
		byOrder: make(map[orderKey]string),
		now:     time.Now,
	}
}

// Close ничего не делает.
func (r *MemoryRepository) Close() error { return nil }

// SaveQuote сохраняет котировку с той же семантикой, что и PostgresRepository.
func (r *MemoryRepository) SaveQuote(_ context.Context, q model.Quote) (model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotes[q.ID]; ok {
		return model.Quote{}, ErrQuoteExists
	}

	key := orderKey{order: q.Order, kind: q.Kind}
	if prevID, ok := r.byOrder[key]; ok {
		prev := r.quotes[prevID]
		if prev.MerchantID != q.MerchantID {
			return model.Quote{}, ErrOrderOwnedByAnother
		}
		delete(r.quotes, prevID)
	}

	q.CreatedAt = r.now().UTC()
	r.quotes[q.ID] = q
	r.byOrder[key] = q.ID
	return q, nil
}

// GetQuote возвращает котировку мерчанта по идентификатору.
func (r *MemoryRepository) GetQuote(_ context.Context, merchantID int64, id string) (*model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.quotes[id]
	if !ok || q.MerchantID != merchantID {
		return nil, ErrQuoteNotFound
	}
	return &q, nil
}

// ListQuotes возвращает котировки мерчанта, начиная с последних.
func (r *MemoryRepository) ListQuotes(_ context.Context, merchantID int64, limit int) ([]model.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.Quote
	for _, q := range r.quotes {
		if q.MerchantID == merchantID {
			res = append(res, q)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
