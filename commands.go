package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const eventsQueue = "catalog.product_events"

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Product catalog REST service",
		Long: `Catalog serves a REST API for creating, reading, updating, deleting and
listing products, plus a small administration page.

Running catalog without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json, toml or env)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	rootCmd.RunE = serveCmd.RunE

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the products table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.DatabaseDSN == database.MemoryDSN {
				return errors.New("nothing to migrate: DATABASE_DSN is memory")
			}
			db, err := database.Open(cfg.DatabaseDSN, cfg.DatabaseDebug)
			if err != nil {
				return err
			}
			defer database.Close(db)
			fmt.Fprintln(cmd.OutOrStdout(), "● Products table is up to date")
			return nil
		},
	}

	var confirmed bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every product",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to delete every product without --yes")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			repo, closeRepo, err := app.OpenRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			service := services.NewProductService(repo, nil, nil)
			if err := service.ResetProducts(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "● All products deleted")
			return nil
		},
	}
	resetCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting every product")

	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash to use as ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := services.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Log product events published to RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(configPath)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, resetCmd, hashCmd, watchCmd)
	return rootCmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("**********************************************************************")
	log.Info("  P R O D U C T   C A T A L O G   S E R V I C E   R U N N I N G")
	log.Info("**********************************************************************")

	repo, closeRepo, err := app.OpenRepository(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error("Error closing repository", zap.Error(err))
		}
	}()

	opts := app.Options{
		Config:     cfg,
		Logger:     log,
		Repository: repo,
		AccessLog:  true,
	}
	if cfg.EventsEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Logger:   log,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		opts.Publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL is not set, product events are not published")
	}

	server := app.NewApp(opts)
	log.Info("Service initialized")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
	return nil
}

func runWatch(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.EventsEnabled() {
		return errors.New("RABBITMQ_URL must be provided to watch product events")
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:      cfg.RabbitMQURL,
		Exchange: cfg.RabbitMQExchange,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		mqClient.Close()
	}()

	log.Info("Watching product events", zap.String("queue", eventsQueue))
	return mqClient.Consume(eventsQueue, "product.#", eventLogger(log))
}

// eventLogger returns a delivery handler that logs each product event.
func eventLogger(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event models.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("decode product event: %w", err)
		}
		fields := []zap.Field{
			zap.String("type", event.Type),
			zap.Time("occurred_at", event.OccurredAt),
		}
		if event.ProductID != 0 {
			fields = append(fields, zap.Uint("product_id", event.ProductID))
		}
		if event.Product != nil {
			fields = append(fields, zap.String("product", event.Product.String()))
		}
		log.Info("Product event", fields...)
		return nil
	}
}
