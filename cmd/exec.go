package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"event-planner/config"
	"event-planner/handlers"
	"event-planner/internal/gateway"
	"event-planner/internal/store"
	"event-planner/services"
	"event-planner/utils"
)

func Start() error {
	cfg := config.LoadConfig()

	utils.SetupLogging()

	// Initialize persistent storage
	st, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	// Initialize Redis. The planner degrades without it: the collected
	// ledger falls back to memory and order sessions are not cached.
	var (
		redisClient *redis.Client
		ledger      services.Ledger
	)
	redisClient, err = utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("redis unavailable, using in-memory collected ledger", "error", err)
		redisClient = nil
		ledger = services.NewMemoryLedger()
	} else {
		defer redisClient.Close()
		ledger = services.NewRedisLedger(redisClient)
	}

	// Initialize PubNub notifier
	var publisher services.Publisher
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		publisher = services.NewPubNubPublisher(pubnub.NewPubNub(pnConfig))
	}
	notifier := services.NewNotifier(publisher)

	// Initialize payment gateway
	gw := gateway.NewClient(&gateway.ClientConfig{
		BaseURL:   cfg.GatewayBaseURL,
		KeyID:     cfg.GatewayKeyID,
		KeySecret: cfg.GatewayKeySecret,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	coord := services.NewCoordinator(st)
	budget := services.NewBudgetService(cfg.RequireNonNegativeSpent)
	eventService := services.NewEventService(coord, budget, notifier)
	guestService := services.NewGuestService(coord, budget, notifier)
	vendorService := services.NewVendorService(coord, budget, notifier)
	splitService := services.NewSplitService(st, gw, ledger, notifier, redisClient, services.SplitConfig{
		Currency: cfg.DefaultCurrency,
		OrderTTL: cfg.OrderTTL,
	})

	// Subscribe to provider payment confirmations
	if cfg.PubNubSubscribeKey != "" {
		lis := gateway.NewListener(ctx, &gateway.ListenerConfig{
			SubscribeKey: cfg.PubNubSubscribeKey,
			SecretKey:    cfg.PubNubSecretKey,
			UUID:         "event-planner",
			Channel:      cfg.GatewayChannel,
		})
		go splitService.ProcessNotifications(ctx, lis.Notifications())
	}

	// Register routes
	e := echo.New()
	router := &handlers.Router{
		Event:  handlers.NewEventHandler(eventService),
		Guest:  handlers.NewGuestHandler(guestService),
		Vendor: handlers.NewVendorHandler(vendorService),
		Split:  handlers.NewSplitHandler(splitService),
		Redis:  redisClient,
	}
	router.Register(e)

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go handleShutdown(ctx, cancel, srv)

	slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics server starting", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server failed", "error", err)
	}
}

// handleShutdown drains in-flight requests before exit.
func handleShutdown(ctx context.Context, cancel context.CancelFunc, srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received, draining")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}
