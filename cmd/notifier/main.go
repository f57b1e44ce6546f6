package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"campuspulse/internal/config"
	"campuspulse/internal/geocode"
	"campuspulse/internal/journey"
	"campuspulse/internal/mail"
	"campuspulse/internal/notify"
	"campuspulse/internal/report"
	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("NOTIFIER_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	if err := store.Migrate(cfg.DSN()); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.DSN(), loc)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database error")
	}
	defer db.Close()

	transitClient := transit.NewClient(cfg.Transit.BaseURL)
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		transitClient.UseRedisCache(rdb, cfg.CacheTTL())
	}
	geocodeClient := geocode.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.Contact)
	mailer := mail.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.SenderEmail, cfg.Mail.SenderName,
		cfg.MailRate(), cfg.MailBurst())

	if cfg.Mail.APIKey == "" || cfg.Mail.SenderEmail == "" {
		logger.Warn().Msg("mail sender not configured, notifications will fail to send")
	}

	resolver := journey.NewResolver(transitClient, geocodeClient)
	planner := journey.NewPlanner(transitClient, loc, nil)
	renderer, err := notify.NewRenderer(cfg.Notify.CampusLocation)
	if err != nil {
		logger.Fatal().Err(err).Msg("renderer init failed")
	}

	var metrics *notify.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		metrics = notify.NewMetrics("campuspulse")
		go startMetricsServer(ctx, cfg.PrometheusPort(), &logger)
	}

	service := notify.NewService(db, resolver, planner, renderer, mailer,
		cfg.Notify.CampusLocation, loc, nil, metrics, logger)

	schedCfg := notify.DefaultSchedulerConfig()
	schedCfg.DailyHour = cfg.DailyHour()
	schedCfg.DailyMinute = cfg.DailyMinute()
	schedCfg.ReturnInterval = cfg.ReturnInterval()
	scheduler := notify.NewScheduler(schedCfg, service, loc, logger)

	go startOpsServer(ctx, cfg.OpsPort(), db, rdb, &logger)

	scheduler.Start(ctx)
	logger.Info().Str("timezone", cfg.Timezone).Msg("commute notifier started")

	<-ctx.Done()
	scheduler.Stop()
	logger.Info().Msg("commute notifier stopped")
}

func startOpsServer(ctx context.Context, port int, db *store.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.Ping(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/report/notifications.xlsx", func(w http.ResponseWriter, r *http.Request) {
		entries, err := db.NotificationLog(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("notification log query failed")
			http.Error(w, "report unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="notifications.xlsx"`)
		if err := report.WriteNotificationLog(w, entries); err != nil {
			logger.Error().Err(err).Msg("report write failed")
		}
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("ops server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
