package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/v-23-69/coinkart/internal/api"
	"github.com/v-23-69/coinkart/internal/cache"
	"github.com/v-23-69/coinkart/internal/config"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/notification"
	"github.com/v-23-69/coinkart/internal/payment"
	"github.com/v-23-69/coinkart/internal/port"
	"github.com/v-23-69/coinkart/internal/repository"
	"github.com/v-23-69/coinkart/internal/service"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("checkout-service exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()

	svc := service.NewCheckoutService(
		repository.NewCart(pool),
		repository.NewOrder(pool),
		cache.NewRedisCartCache(redisClient),
		payment.NewDispatcher(logger, paymentHandlers(cfg)),
		notification.NewFanout(emailSender(cfg, logger), smsSender(cfg, logger), logger),
		logger,
	)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(svc, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting checkout-service", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func paymentHandlers(cfg *config.Config) map[domain.PaymentMethod]port.PaymentHandler {
	handlers := make(map[domain.PaymentMethod]port.PaymentHandler)

	if cfg.UPIGatewayURL != "" {
		handlers[domain.PaymentMethodUPI] = payment.NewUPIHandler(cfg.UPIGatewayURL, cfg.UPIGatewayAPIKey)
	}
	if cfg.StripeSecretKey != "" {
		handlers[domain.PaymentMethodCard] = payment.NewCardHandler(cfg.StripeSecretKey)
	}
	if cfg.NetBankingGatewayURL != "" {
		handlers[domain.PaymentMethodNetBanking] = payment.NewNetBankingHandler(
			cfg.NetBankingGatewayURL, cfg.NetBankingMerchantID, cfg.NetBankingAPIKey)
	}

	return handlers
}

func emailSender(cfg *config.Config, logger *zap.Logger) port.EmailSender {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP not configured, email confirmations disabled")
		return nil
	}

	sender, err := notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		logger.Warn("SMTP misconfigured, email confirmations disabled", zap.Error(err))
		return nil
	}

	return sender
}

func smsSender(cfg *config.Config, logger *zap.Logger) port.SMSSender {
	if cfg.TwilioAccountSID == "" {
		logger.Warn("Twilio not configured, SMS confirmations disabled")
		return nil
	}

	sender, err := notification.NewTwilioSender(notification.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	})
	if err != nil {
		logger.Warn("Twilio misconfigured, SMS confirmations disabled", zap.Error(err))
		return nil
	}

	return sender
}
