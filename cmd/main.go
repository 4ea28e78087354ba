package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/metrics"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	m := metrics.New()

	// Shared upstream client. Deadlines are set per call.
	sharedHTTP := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	upstreams := clients.NewSet(cfg, sharedHTTP, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openCartStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("cart store init failed", "store", cfg.CartStore, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	broker := cart.NewBroker()
	notifier, closeNotifier := openNotifier(cfg, broker, logger)
	defer closeNotifier()

	cartSvc := cart.NewService(store, logger,
		cart.WithNotifier(notifier),
		cart.WithObserver(m),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:  logger,
		Cfg:     cfg,
		Clients: upstreams,
		Metrics: m,
		Cart:    cartSvc,
		Broker:  broker,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port, "cart_store", cfg.CartStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("shutdown complete")
}

// openCartStore builds the store named by CART_STORE. The returned func
// releases its connections.
func openCartStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (cart.Store, func(), error) {
	switch cfg.CartStore {
	case "", "memory":
		return cart.NewMemoryStore(), func() {}, nil

	case "redis":
		client, err := cart.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return cart.NewRedisStore(client, cart.DefaultTTL), func() { _ = client.Close() }, nil

	case "postgres":
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return nil, nil, err
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return cart.NewPostgresStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
	}
}

// openNotifier always feeds the in-process broker. RabbitMQ is added when
// configured; a broker that cannot be reached is logged and skipped.
func openNotifier(cfg config.Config, broker *cart.Broker, logger *slog.Logger) (cart.Notifier, func()) {
	if cfg.RabbitMQURL == "" {
		return broker, func() {}
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, cart events stay in-process", "err", err)
		return broker, func() {}
	}
	pub, err := events.NewPublisher(conn, events.PublisherOptions{})
	if err != nil {
		logger.Warn("rabbitmq publisher init failed", "err", err)
		_ = conn.Close()
		return broker, func() {}
	}

	logger.Info("publishing cart events", "exchange", events.EventsExchange)
	return cart.MultiNotifier{broker, pub}, func() {
		_ = pub.Close()
		_ = conn.Close()
	}
}
