package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/menulink/ordercore/internal/catalog/httpload"
	catsync "github.com/menulink/ordercore/internal/catalog/sync"
	"github.com/menulink/ordercore/internal/gateway/httpx"
	"github.com/menulink/ordercore/internal/handoff"
	"github.com/menulink/ordercore/internal/handoff/sqlite"
	"github.com/menulink/ordercore/internal/order"
	"github.com/menulink/ordercore/internal/pkg/cache"
	"github.com/menulink/ordercore/internal/pkg/config"
	"github.com/menulink/ordercore/internal/pkg/telemetry"
	"github.com/menulink/ordercore/internal/pricing"
	"github.com/menulink/ordercore/internal/session"
	"github.com/redis/go-redis/v9"
)

const serviceName = "order-gateway"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.InitLogger(serviceName)

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		log.Fatalf("tracer setup failed: %v", err)
	}
	defer shutdownTracer(context.Background()) //nolint:errcheck

	cfg := config.Load()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	orderStore, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("order store open failed: %v", err)
	}
	defer orderStore.Close()

	loader := httpload.New(cfg.CatalogBaseURL, nil)
	notifier := catsync.NewRedisNotifier(redisClient)
	snapshots := cache.NewRedisStore(redisClient, serviceName, cfg.SnapshotCacheTTL)

	sessions := session.NewManager(loader, notifier, snapshots)
	defer sessions.CloseAll()

	composer := order.NewComposer(cfg.BusinessName, pricing.Locale{
		CurrencySymbol: cfg.CurrencySymbol,
		ThousandsSep:   cfg.ThousandsSep,
		DecimalSep:     cfg.DecimalSep,
	})
	deepLink := handoff.NewDeepLink(cfg.MessagingBaseURL, cfg.BusinessWhatsApp)

	handler := httpx.NewHandler(sessions, composer, deepLink, orderStore)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpx.NewRouter(handler),
	}

	go func() {
		log.Printf("order gateway running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
