package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/httpapi"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := utils.NewDefaultLogger(level)

	var store kv.Store
	var pdb *kv.Pebble
	switch {
	case os.Getenv("REDIS_URL") != "":
		var err error
		store, err = kv.OpenRedis(os.Getenv("REDIS_URL"))
		if err != nil {
			log.Error("open redis", "error", err)
			os.Exit(1)
		}
	case os.Getenv("DATA_DIR") != "":
		var err error
		pdb, err = kv.OpenPebble(os.Getenv("DATA_DIR"))
		if err != nil {
			log.Error("open pebble", "error", err)
			os.Exit(1)
		}
		store = pdb
	default:
		log.Error("no store configured, set REDIS_URL or DATA_DIR")
		os.Exit(1)
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		contentstore.IndexOps,
		contentstore.ConsistencyWarnings,
		contentstore.ResyncDuration,
	)
	if pdb != nil {
		registry.MustRegister(kv.NewPebbleCollector(pdb.DB()))
	}

	ix := contentstore.NewIndexer(store, log)
	var payments contentstore.PaymentProvider
	if base := os.Getenv("PAYMENT_API_URL"); base != "" {
		payments = &contentstore.HTTPPaymentProvider{
			BaseURL: base,
			APIKey:  os.Getenv("PAYMENT_API_KEY"),
		}
	}

	counts := true
	if v, err := strconv.ParseBool(os.Getenv("COUNTS_ENABLED")); err == nil {
		counts = v
	}

	server := httpapi.NewServer(httpapi.Config{
		Blog:          contentstore.NewBlog(store, ix, log),
		Fleet:         contentstore.NewFleet(store, ix, log),
		Rentals:       contentstore.NewRentals(store, ix, payments, log),
		Store:         store,
		Auth:          contentstore.StaticVerifier{AdminToken: os.Getenv("ADMIN_TOKEN")},
		Log:           log,
		CronToken:     os.Getenv("CRON_TOKEN"),
		CountsEnabled: counts,
	})

	router := server.Router()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
