// Package repository содержит хранилища рассчитанных котировок.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dayofai/dayof-sub002/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrQuoteNotFound возвращается, если котировка не найдена.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrQuoteExists возвращается при повторном использовании идентификатора котировки.
	ErrQuoteExists = errors.New("quote already exists")
	// ErrOrderOwnedByAnother возвращается, если заказ уже рассчитан другим мерчантом.
	ErrOrderOwnedByAnother = errors.New("order already quoted by another merchant")
)

// PostgresRepository хранит котировки в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт репозиторий и применяет миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при конфликтах сериализации, взаимных
// блокировках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil || !isRetryable(err) || i == len(r.delays) {
			return err
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// SaveQuote сохраняет котировку. Повторный расчёт того же заказа тем же
// мерчантом заменяет предыдущий результат.
func (r *PostgresRepository) SaveQuote(ctx context.Context, q model.Quote) (model.Quote, error) {
	saved := q
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO quotes (id, merchant_id, order_number, product, kind, currency, total_after_tax, breakdown)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (order_number, kind) DO UPDATE
			 SET id = EXCLUDED.id,
			     product = EXCLUDED.product,
			     currency = EXCLUDED.currency,
			     total_after_tax = EXCLUDED.total_after_tax,
			     breakdown = EXCLUDED.breakdown,
			     created_at = now()
			 WHERE quotes.merchant_id = EXCLUDED.merchant_id
			 RETURNING created_at`,
			q.ID, q.MerchantID, q.Order, q.Product, string(q.Kind), q.Currency, q.TotalAfterTax, []byte(q.Breakdown),
		).Scan(&saved.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Quote{}, ErrOrderOwnedByAnother
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Quote{}, fmt.Errorf("%w: %s", ErrQuoteExists, q.ID)
		}
		return model.Quote{}, fmt.Errorf("save quote: %w", err)
	}
	return saved, nil
}

const quoteColumns = `id, merchant_id, order_number, product, kind, currency, total_after_tax, breakdown, created_at`

// GetQuote возвращает котировку мерчанта по идентификатору.
func (r *PostgresRepository) GetQuote(ctx context.Context, merchantID int64, id string) (*model.Quote, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND merchant_id = $2`,
		id, merchantID,
	)

	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &q, nil
}

// ListQuotes возвращает котировки мерчанта, начиная с последних.
func (r *PostgresRepository) ListQuotes(ctx context.Context, merchantID int64, limit int) ([]model.Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+`
		 FROM quotes
		 WHERE merchant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		merchantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	defer rows.Close()

	var res []model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		res = append(res, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func scanQuote(row pgx.Row) (model.Quote, error) {
	var (
		q         model.Quote
		kind      string
		breakdown []byte
	)
	err := row.Scan(&q.ID, &q.MerchantID, &q.Order, &q.Product, &kind, &q.Currency, &q.TotalAfterTax, &breakdown, &q.CreatedAt)
	if err != nil {
		return model.Quote{}, err
	}
	q.Kind = model.QuoteKind(kind)
	q.Breakdown = breakdown
	return q, nil
}
