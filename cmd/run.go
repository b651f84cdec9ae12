package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lotto/api"
	"lotto/bot"
	"lotto/config"
	"lotto/database"
	"lotto/events"
	"lotto/infrastructure"
	"lotto/repository"
	"lotto/service"

	log "github.com/sirupsen/logrus"
)

const serviceName = "lotto"

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := config.ConfigureLogging(cfg); err != nil {
		return err
	}
	log.WithField("environment", cfg.Environment).Info("Starting lotto ledger...")

	databaseURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	accountService := service.NewAccountService(uowFactory, cfg.StartingBalance)
	playService := service.NewPlayService(uowFactory, service.RandomDraw{})
	reversalService := service.NewReversalService(uowFactory)
	log.Info("Services initialized successfully")

	if cfg.NATSURL != "" {
		natsClient, err := connectNATS(ctx, cfg.NATSURL, eventBus)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.Errorf("Error closing NATS connection: %v", err)
			}
		}()
	} else {
		log.Info("NATS_URL not set, event forwarding disabled")
	}

	if cfg.DiscordToken != "" {
		discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken, GuildID: cfg.DiscordGuildID},
			accountService, playService, reversalService)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		defer func() {
			if err := discordBot.Close(); err != nil {
				log.Errorf("Error closing Discord bot: %v", err)
			}
		}()
	} else {
		log.Info("DISCORD_TOKEN not set, Discord bot disabled")
	}

	tokens := api.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	handler := api.NewHandler(accountService, playService, reversalService, tokens)
	server := api.NewServer(cfg.HTTPAddr, api.NewRouter(handler, cfg.CORSOrigins))

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

func connectNATS(ctx context.Context, url string, eventBus *events.Bus) (*infrastructure.NATSClient, error) {
	client := infrastructure.NewNATSClient(url, serviceName)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.StreamName, mapper.GetAllSubjects()); err != nil {
		client.Close()
		return nil, err
	}

	infrastructure.NewEventForwarder(client, mapper, serviceName).Attach(eventBus)
	log.Info("Forwarding ledger events to NATS")
	return client, nil
}
