// Package main запускает HTTP-сервер сервиса расчёта оплаты.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dayofai/dayof-sub002/internal/config"
	"github.com/dayofai/dayof-sub002/internal/feeschedule"
	"github.com/dayofai/dayof-sub002/internal/handler"
	"github.com/dayofai/dayof-sub002/internal/middleware"
	"github.com/dayofai/dayof-sub002/internal/model"
	"github.com/dayofai/dayof-sub002/internal/pricing"
	"github.com/dayofai/dayof-sub002/internal/repository"
	"github.com/dayofai/dayof-sub002/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		repo, err = repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
	} else {
		sugar.Warn("DATABASE_URI is empty, quotes are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	var fees service.FeeSchedule
	if cfg.FeeScheduleAddress != "" {
		fees = feeschedule.NewClient(cfg.FeeScheduleAddress)
	}

	taxRate, err := pricing.TaxRateFromDecimal(cfg.TaxRate)
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	calc := pricing.NewCalculator(pricing.CalculatorConfig{
		Currency: cfg.Currency,
		Scale:    cfg.CurrencyScale,
		TaxRate:  taxRate,
	})

	defaults := model.ProductFees{
		BookingFee:        cfg.BookingFee,
		ProcessingPercent: cfg.ProcessingPercent,
		PaymentPlanFee:    cfg.PaymentPlanFee,
	}

	svc := service.NewService(repo, calc, fees, defaults, cfg.FeeRefreshInterval)
	defer svc.Close()

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is empty, using a random key for this process")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновое обновление комиссий продуктов
	g.Go(func() error {
		svc.StartFeeScheduleUpdates(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting paycalc server",
			"addr", cfg.RunAddress,
			"currency", calc.Currency(),
			"tax_rate", calc.TaxRate().Decimal().String(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
