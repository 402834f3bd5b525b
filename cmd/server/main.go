package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rloza/tiendapos/internal/analytics"
	"github.com/rloza/tiendapos/internal/cart"
	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/httpx"
	"github.com/rloza/tiendapos/internal/pkg/telemetry"
	"github.com/rloza/tiendapos/internal/storage/sqlite"
	"github.com/rloza/tiendapos/internal/whatsapp"
)

const service = "tiendapos"

func main() {
	telemetry.InitLogger(service)
	ctx := context.Background()

	shutdownTracer, err := telemetry.SetupTracer(ctx, service)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	store, err := sqlite.Open(getEnv("SQLITE_PATH", "./data/tiendapos.db"))
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	productRepo := sqlite.NewProductRepo(store)
	orderRepo := sqlite.NewOrderRepo(store)

	products := catalog.NewService(productRepo)
	engine := checkout.NewEngine(store)
	rollup := analytics.NewService(orderRepo, productRepo)

	cartTTL := cart.DefaultTTL
	if v := os.Getenv("CART_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid CART_TTL", "value", v, "error", err)
			os.Exit(1)
		}
		cartTTL = d
	}
	carts := cart.NewRedisStore(getEnv("REDIS_ADDR", "localhost:6379"), cartTTL)

	waClient := whatsapp.NewClient(
		os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		os.Getenv("WHATSAPP_ACCESS_TOKEN"),
	)
	bot := whatsapp.NewBot(waClient, productRepo, carts, engine, os.Getenv("WHATSAPP_CATALOG_ID"))
	webhook := whatsapp.NewWebhook(bot,
		os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		os.Getenv("WHATSAPP_APP_SECRET"),
	)

	handler := httpx.NewHandler(products, orderRepo, engine, rollup)
	router := httpx.NewRouter(handler, webhook, os.Getenv("STATIC_DIR"))

	server := &http.Server{
		Addr:    getEnv("HTTP_ADDR", ":8080"),
		Handler: router,
	}

	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
