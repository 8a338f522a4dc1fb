// Package main implements scriptd, which serves Gremlin script fragments over
// HTTP and, when NATS_URL is set, NATS request/reply.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/wessley-gremlin/engine/script"
	"github.com/WessleyAI/wessley-gremlin/engine/scriptsvc"
	"github.com/WessleyAI/wessley-gremlin/pkg/mid"
	"github.com/WessleyAI/wessley-gremlin/pkg/serial"
)

// Config holds all environment-based configuration.
type Config struct {
	Port          string
	ServiceName   string
	NATSURL       string
	SubjectPrefix string
	QueueGroup    string
	TagKey        string
	RateLimitRPS  float64
	RateBurst     int
	LogLevel      slog.Level
}

func loadConfig() Config {
	return Config{
		Port:          envOr("PORT", "8080"),
		ServiceName:   envOr("SERVICE_NAME", "scriptd"),
		NATSURL:       os.Getenv("NATS_URL"),
		SubjectPrefix: envOr("NATS_SUBJECT_PREFIX", scriptsvc.DefaultSubjectPrefix),
		QueueGroup:    envOr("NATS_QUEUE_GROUP", "scriptd"),
		TagKey:        envOr("SERIAL_TAG_KEY", serial.DefaultTagKey),
		RateLimitRPS:  envFloat("RATE_LIMIT_RPS", 0),
		RateBurst:     envInt("RATE_LIMIT_BURST", 50),
		LogLevel:      parseLevel(envOr("LOG_LEVEL", "info")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func main() {
	cfg := loadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gen := script.New(serial.New(serial.WithTagKey(cfg.TagKey)))
	svc := scriptsvc.New(gen, logger, scriptsvc.NewMetrics(reg))

	// --- NATS (optional) ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()

		if _, err := svc.Serve(nc, cfg.SubjectPrefix, cfg.QueueGroup); err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		logger.Info("nats responder ready", "prefix", cfg.SubjectPrefix, "queue", cfg.QueueGroup)
	}

	// --- HTTP ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(cfg, svc, reg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("scriptd starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func newHandler(cfg Config, svc *scriptsvc.Service, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateBurst)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", mid.Chain(svc.Routes(), mid.RateLimit(limiter)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.OTel(cfg.ServiceName),
	)
}
