// Package main is the entry point for the NetPulse alerting service.
// It initializes all components and starts the HTTP server, the event
// processor, the periodic sweeps and the index sync daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"netpulse/internal/api"
	"netpulse/internal/banner"
	"netpulse/internal/config"
	"netpulse/internal/evaluator"
	"netpulse/internal/ingest"
	"netpulse/internal/notification"
	"netpulse/internal/processor"
	"netpulse/internal/queue"
	kafkaqueue "netpulse/internal/queue/kafka"
	memoryqueue "netpulse/internal/queue/memory"
	"netpulse/internal/search"
	"netpulse/internal/store"
	memorystor "netpulse/internal/store/memory"
	postgresstor "netpulse/internal/store/postgres"
	redisstor "netpulse/internal/store/redis"
	"netpulse/internal/syncer"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	banner.Print()

	// Load configuration first so the logger honors its settings.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	logger := initLogger(&cfg.Logger)
	logger.Info("configuration loaded",
		"path", *configPath,
		"storage_mode", cfg.Storage.Mode,
	)

	deps, cleanup, err := initDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start processor in background
	go func() {
		if err := deps.processor.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("processor error", "error", err)
			cancel()
		}
	}()

	// Schedule sweeps and the sync daemon
	scheduler := cron.New()
	registerSchedules(ctx, scheduler, cfg, deps, logger)
	scheduler.Start()
	defer scheduler.Stop()

	// Start HTTP server
	go func() {
		if err := deps.server.Start(); err != nil {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	logger.Info("NetPulse started",
		"address", cfg.Server.Address(),
		"storage_mode", cfg.Storage.Mode,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := deps.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("NetPulse stopped")
}

// dependencies holds all initialized service dependencies.
type dependencies struct {
	server       *api.Server
	processor    *processor.Service
	syncDaemon   *syncer.Daemon
	autoResolver *processor.AutoResolver
	statusSweep  *processor.StatusSweeper
}

// initDependencies creates and wires all service dependencies based on config.
// Returns the dependencies and a cleanup function.
func initDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, func(), error) {
	var (
		configRepo   store.ConfigRepository
		channelRepo  store.ChannelRepository
		alertRepo    store.AlertRepository
		logRepo      store.LogRepository
		metricRepo   store.MetricRepository
		statusRepo   store.StatusRepository
		cooldowns    store.CooldownCache
		searchClient *search.Client
		producer     queue.Producer
		consumer     queue.Consumer
		cleanupFuncs []func()
	)

	if cfg.Storage.UseMemory() {
		logger.Info("initializing in-memory storage")

		memConfigs := memorystor.NewConfigRepository()
		memAlerts := memorystor.NewAlertRepository(memConfigs)
		memConfigs.AttachAlerts(memAlerts)

		configRepo = memConfigs
		alertRepo = memAlerts
		channelRepo = memorystor.NewChannelRepository()
		logRepo = memorystor.NewLogRepository()
		metricRepo = memorystor.NewMetricRepository()
		statusRepo = memorystor.NewStatusRepository()
		cooldowns = memorystor.NewCooldownCache()

		memQueue := memoryqueue.NewQueue(cfg.Kafka.BufferSize)
		producer = memQueue
		consumer = memQueue
		cleanupFuncs = append(cleanupFuncs, func() { _ = memQueue.Close() })
	} else {
		logger.Info("initializing production storage (PostgreSQL, Redis, Kafka, Elasticsearch)")

		ctx := context.Background()
		db, err := postgresstor.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanupFuncs = append(cleanupFuncs, db.Close)

		if err := db.RunMigrations(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("database migrations completed")

		configRepo = postgresstor.NewConfigRepository(db)
		channelRepo = postgresstor.NewChannelRepository(db)
		alertRepo = postgresstor.NewAlertRepository(db)
		logRepo = postgresstor.NewLogRepository(db)
		metricRepo = postgresstor.NewMetricRepository(db)
		statusRepo = postgresstor.NewStatusRepository(db)

		redisCache, err := redisstor.NewCooldownCache(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		cooldowns = redisCache
		cleanupFuncs = append(cleanupFuncs, func() { _ = redisCache.Close() })

		searchClient, err = search.New(cfg.Search.Addresses)
		if err != nil {
			return nil, nil, err
		}

		kafkaProducer := kafkaqueue.NewProducer(&cfg.Kafka)
		producer = kafkaProducer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaProducer.Close() })

		kafkaConsumer := kafkaqueue.NewConsumer(&cfg.Kafka, logger)
		consumer = kafkaConsumer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaConsumer.Close() })
	}

	// Notification dispatcher
	httpClient := &http.Client{Timeout: cfg.Notify.SendTimeout}
	senders := []notification.Sender{
		notification.NewWebhookSender(httpClient),
		notification.NewSlackSender(httpClient),
		notification.NewCustomSender(httpClient),
	}
	if cfg.Notify.SMTP.Host != "" {
		emailSender, err := notification.NewEmailSender(notification.SMTPConfig{
			Host:     cfg.Notify.SMTP.Host,
			Port:     cfg.Notify.SMTP.Port,
			Username: cfg.Notify.SMTP.Username,
			Password: cfg.Notify.SMTP.Password,
			From:     cfg.Notify.SMTP.From,
		})
		if err != nil {
			return nil, nil, err
		}
		senders = append(senders, emailSender)
	}
	if cfg.Notify.SMSGateway.URL != "" {
		smsSender, err := notification.NewSMSSender(notification.SMSGatewayConfig{
			URL:   cfg.Notify.SMSGateway.URL,
			Token: cfg.Notify.SMSGateway.Token,
		}, httpClient)
		if err != nil {
			return nil, nil, err
		}
		senders = append(senders, smsSender)
	}
	dispatcher := notification.NewDispatcher(channelRepo, alertRepo, senders, cfg.Notify.SendTimeout, logger)

	// Core pipeline
	eval := evaluator.New(logger)
	ingestService := ingest.NewService(producer, logger)
	processorService := processor.NewService(
		consumer,
		configRepo,
		alertRepo,
		logRepo,
		metricRepo,
		cooldowns,
		eval,
		dispatcher,
		logger,
	)

	// Sweeps
	autoResolver := processor.NewAutoResolver(alertRepo, logger)
	statusSweep := processor.NewStatusSweeper(alertRepo, statusRepo, logger)

	// Index sync daemon. Memory mode has no secondary index, so the
	// daemon is only wired when a search client exists.
	var syncDaemon *syncer.Daemon
	if searchClient != nil {
		syncDaemon = syncer.New(
			searchClient,
			[]syncer.Source{
				syncer.NewAlertSource(alertRepo),
				syncer.NewLogSource(logRepo),
				syncer.NewMetricSource(metricRepo),
				syncer.NewStatusSource(statusRepo),
			},
			cfg.Search.IndexPrefix,
			cfg.Sync.BatchSize,
			logger,
		)
	}

	// API handlers
	configHandler := api.NewConfigHandler(configRepo, logger)
	channelHandler := api.NewChannelHandler(channelRepo, logger)
	alertHandler := api.NewAlertHandler(alertRepo, logger)
	ingestHandler := api.NewIngestHandler(ingestService, logger)

	server := api.NewServer(api.ServerDeps{
		Config:         &cfg.Server,
		Logger:         logger,
		ConfigHandler:  configHandler,
		ChannelHandler: channelHandler,
		AlertHandler:   alertHandler,
		IngestHandler:  ingestHandler,
	})

	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	return &dependencies{
		server:       server,
		processor:    processorService,
		syncDaemon:   syncDaemon,
		autoResolver: autoResolver,
		statusSweep:  statusSweep,
	}, cleanup, nil
}

// registerSchedules wires the periodic jobs into the cron scheduler.
func registerSchedules(ctx context.Context, scheduler *cron.Cron, cfg *config.Config, deps *dependencies, logger *slog.Logger) {
	mustAdd := func(spec string, job func()) {
		if _, err := scheduler.AddFunc(spec, job); err != nil {
			logger.Error("failed to schedule job", "spec", spec, "error", err)
			os.Exit(1)
		}
	}

	mustAdd(fmt.Sprintf("@every %s", cfg.Sweeps.AutoResolveInterval), func() {
		_ = deps.autoResolver.Run(ctx)
	})
	mustAdd(fmt.Sprintf("@every %s", cfg.Sweeps.StatusInterval), func() {
		_ = deps.statusSweep.Run(ctx)
	})
	if deps.syncDaemon != nil {
		mustAdd(fmt.Sprintf("@every %s", cfg.Sync.Interval), func() {
			_ = deps.syncDaemon.SweepAll(ctx)
		})
	}
}

// initLogger creates and configures the application logger.
func initLogger(cfg *config.LoggerConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
