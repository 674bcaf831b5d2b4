package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casamira/internal/audit"
	"casamira/internal/auth"
	"casamira/internal/config"
	"casamira/internal/domain"
	"casamira/internal/events"
	"casamira/internal/export"
	"casamira/internal/logging"
	"casamira/internal/metrics"
	"casamira/internal/notify"
	"casamira/internal/service"
	"casamira/internal/session"
	"casamira/internal/store"
	"casamira/internal/web"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	st, err := store.New(cfg.Data.Dir, &logger)
	if err != nil {
		logger.Error().Err(err).Str("data_dir", cfg.Data.Dir).Msg("init record store")
		return err
	}

	if err := seedStore(cfg, st, &logger); err != nil {
		return err
	}

	sessionTTL := time.Duration(cfg.Sessions.TTLSeconds) * time.Second
	sessionRepo := initSessions(cfg, sessionTTL, &logger)
	sessions := session.NewManager(sessionRepo, &logger)

	auditLog, err := initAudit(cfg, &logger)
	if err != nil {
		return err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}

	eventBus := events.NewEventBus()

	var recorder domain.AuditRecorder
	if auditLog != nil {
		recorder = auditLog
	}

	bookings := service.NewBookingService(st, eventBus, recorder, &logger)
	content := service.NewContentService(st, recorder, &logger)
	feedback := service.NewFeedbackService(st, eventBus, recorder, &logger)
	exporter := export.NewBookingExporter(cfg.Exports.Path, &logger)
	authn := auth.NewStoreAuthenticator(st, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startNotifier(ctx, cfg, eventBus, &logger)
	startBackups(ctx, cfg, st, &logger)
	startMetrics(ctx, cfg, &logger)

	server := web.NewServer(cfg, web.Deps{
		Sessions: sessions,
		Authn:    authn,
		Bookings: bookings,
		Content:  content,
		Feedback: feedback,
		Exporter: exporter,
		AuditLog: auditLog,
	}, &logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("web server stopped")
			stop()
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("web server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = server.Shutdown(shutdownCtx)

	logger.Info().Msg("web server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "web-main").Logger()

	return cfg, logger, closer, nil
}

// seedStore materializes missing collections from the seed file and the
// configured staff accounts. Existing collections are never overwritten.
func seedStore(cfg *config.Config, st *store.Store, logger *zerolog.Logger) error {
	var content store.SeedContent

	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = cfg.Data.SeedPath
	}

	seedData, err := os.ReadFile(seedPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error().Err(err).Str("seed_path", seedPath).Msg("read seed file")
			return err
		}
		logger.Warn().Str("seed_path", seedPath).Msg("seed file missing, starting with empty content")
	} else if err := yaml.Unmarshal(seedData, &content); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse seed file")
		return err
	}

	if err := st.Seed(content, cfg.Users); err != nil {
		logger.Error().Err(err).Msg("seed record store")
		return err
	}
	return nil
}

// initSessions wires the session repository: redis with in-memory failover
// when configured, plain in-memory otherwise.
func initSessions(cfg *config.Config, ttl time.Duration, logger *zerolog.Logger) domain.SessionRepository {
	memory := session.NewMemorySessionRepository(ttl)

	if cfg.Sessions.Redis.Address == "" {
		logger.Info().Msg("sessions stored in memory")
		return memory
	}

	client := session.NewRedisClient(cfg.Sessions.Redis)
	redisRepo := session.NewRedisSessionRepository(client, ttl)

	if err := session.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, sessions fall back to memory")
	} else {
		logger.Info().Str("addr", cfg.Sessions.Redis.Address).Msg("redis connected")
	}

	return session.NewFailoverSessionRepository(redisRepo, memory, logger)
}

func initAudit(cfg *config.Config, logger *zerolog.Logger) (*audit.Log, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}

	auditLog, err := audit.New(cfg.Audit.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("audit_path", cfg.Audit.Path).Msg("init audit log")
		return nil, err
	}
	return auditLog, nil
}

func startNotifier(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notify.TelegramToken == "" || cfg.Notify.StaffChatID == 0 {
		logger.Info().Msg("staff notifications disabled")
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Notify.TelegramToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewStaffNotifier(bot, cfg.Notify.StaffChatID, notify.DefaultRetryPolicy(), logger)
	notifier.Subscribe(bus)
	go notifier.Start(ctx)

	logger.Info().Int64("chat_id", cfg.Notify.StaffChatID).Msg("staff notifications enabled")
}

func startBackups(ctx context.Context, cfg *config.Config, st *store.Store, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	backups := store.NewBackupService(st, cfg.Backup, logger)
	go backups.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
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
