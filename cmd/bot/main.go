package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/pebble"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/pickup-orderbot/internal/channel"
	"github.com/joao-fontenele/pickup-orderbot/internal/clock"
	"github.com/joao-fontenele/pickup-orderbot/internal/config"
	"github.com/joao-fontenele/pickup-orderbot/internal/conversation"
	"github.com/joao-fontenele/pickup-orderbot/internal/messaging"
	"github.com/joao-fontenele/pickup-orderbot/internal/notify"
	"github.com/joao-fontenele/pickup-orderbot/internal/orders"
	"github.com/joao-fontenele/pickup-orderbot/internal/pickup"
	"github.com/joao-fontenele/pickup-orderbot/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "orderbot", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("orderbot", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	hours, err := cfg.BusinessHours()
	if err != nil {
		logger.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	clk := clock.NewSystem()

	store, closeStore, err := openStore(ctx, cfg, clk)
	if err != nil {
		logger.Error("failed to open order store", "error", err, "store", cfg.OrderStore)
		os.Exit(1)
	}
	defer closeStore()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	channelClient := channel.NewClient(cfg.ChannelURL, httpClient)

	notifyChannels := []notify.Channel{notify.NewChatChannel(channelClient, cfg.ServiceNumber)}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderConfirmed)
		defer func() { _ = producer.Close() }()
		notifyChannels = append(notifyChannels, notify.NewEventChannel(producer))
	}
	notifier := notify.NewDispatcher(hours.Location, clk, logger, notifyChannels...)

	manager := orders.NewManager(store, pickup.NewCalculator(hours), logger)
	orchestrator, err := conversation.NewOrchestrator(manager, channelClient, notifier, conversation.Templates{
		ShopName: cfg.ShopName,
		BotName:  cfg.BotName,
		Location: hours.Location,
	}, clk, logger)
	if err != nil {
		logger.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	webhook := channel.NewWebhookHandler(orchestrator, logger)
	ordersHandler := orders.NewHandler(manager, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/messages", telemetry.WithHTTPRoute(webhook.HandleMessage))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(ordersHandler.HandleList))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(ordersHandler.HandleGet))
	mux.HandleFunc("POST /orders/{id}/sent", telemetry.WithHTTPRoute(ordersHandler.HandleMarkSent))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "orderbot",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting order bot", "port", cfg.Port, "store", cfg.OrderStore)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, clk clock.Clock) (orders.Store, func(), error) {
	if cfg.OrderStore == config.StorePebble {
		store, err := orders.OpenPebbleStore(cfg.PebbleDir, clk, &pebble.Options{})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	db, err := telemetry.OpenDB(ctx, "postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	return orders.NewOrderRepository(db), func() { _ = db.Close() }, nil
}
