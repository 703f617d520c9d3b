package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotteryledger/application"
	"lotteryledger/bot"
	"lotteryledger/bot/features/lottery"
	"lotteryledger/config"
	"lotteryledger/database"
	"lotteryledger/domain/interfaces"
	"lotteryledger/infrastructure"
	"lotteryledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and formatter to the global logger
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting lotteryledger...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.Warnf("Failed to initialize metrics, continuing without them: %v", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	var (
		natsClient     *infrastructure.NATSClient
		eventPublisher interfaces.EventPublisher
		subscriber     application.EventSubscriber
	)

	if cfg.NATSServers != "" {
		log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureLotteryEventStream(); err != nil {
			natsClient.Close()
			db.Close()
			return fmt.Errorf("failed to ensure lottery event stream: %w", err)
		}

		mapper := infrastructure.NewEventSubjectMapper()
		eventPublisher = infrastructure.NewNATSEventPublisher(natsClient, mapper)
		subscriber = infrastructure.NewNATSEventSubscriber(natsClient, mapper)
		log.Info("NATS connection established successfully")
	} else {
		log.Info("NATS_SERVERS not set, delivering lottery events in-process")
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	if subscriber == nil {
		subscriber = uowFactory
	}

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(
		bot.Config{
			Token:   cfg.DiscordToken,
			GuildID: cfg.GuildID,
		},
		uowFactory,
		lottery.Settings{
			StartingBalance:       cfg.StartingBalance,
			DefaultTicketPrice:    cfg.DefaultTicketPrice,
			DefaultMaxTicketCount: cfg.DefaultMaxTicketCount,
		},
	)
	if err != nil {
		if natsClient != nil {
			natsClient.Close()
		}
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	eventHandler := application.NewLotteryEventHandler(uowFactory, discordBot.GetLotteryPoster())
	if err := application.RegisterLotterySubscriptions(subscriber, eventHandler); err != nil {
		log.Errorf("Failed to subscribe to lottery events: %v", err)
	}

	probes := []infrastructure.HealthProbe{
		{
			Name: "database",
			Check: func(ctx context.Context) error {
				if !db.Healthy(ctx) {
					return errors.New("database ping failed")
				}
				return nil
			},
		},
	}
	if natsClient != nil {
		probes = append(probes, infrastructure.NATSProbe(natsClient))
	}

	healthServer := infrastructure.NewHealthServer(cfg.HealthAddr, probes...)
	if err := healthServer.Start(ctx); err != nil {
		log.Warnf("Health server disabled: %v", err)
		healthServer = nil
	}

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")

	if healthServer != nil {
		healthServer.Stop()
	}

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
