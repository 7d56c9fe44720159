package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/flicky/go-marketplace-api/internal/config"
	"github.com/flicky/go-marketplace-api/internal/events"
	"github.com/flicky/go-marketplace-api/internal/feed"
	"github.com/flicky/go-marketplace-api/internal/handler"
	"github.com/flicky/go-marketplace-api/internal/repository"
	"github.com/flicky/go-marketplace-api/internal/service"
	"github.com/flicky/go-marketplace-api/internal/worker"
)

type consumer interface {
	Start(ctx context.Context) error
	Stop()
}

// transport is the configured event plumbing: a publisher for checkout, a
// consumer for the sales worker and a readiness probe.
type transport struct {
	publisher events.Publisher
	consumer  consumer
	check     handler.Check
	close     func()
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	salesFeed := feed.New(redisClient, cfg.Feed.MaxEntries)
	salesWorker := worker.NewSalesWorker(salesFeed, log)

	// Events
	tr, err := connectEvents(cfg.Events, salesWorker, log)
	if err != nil {
		log.Error("connect event transport", "driver", cfg.Events.Driver, "error", err)
		os.Exit(1)
	}
	defer tr.close()
	log.Info("event transport ready", "driver", cfg.Events.Driver)

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	checkoutRepo := repository.NewCheckoutRepository(dbPool)
	favoriteRepo := repository.NewFavoriteRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)

	// Services
	services := handler.Services{
		Auth:      service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Users:     service.NewUserService(userRepo),
		Products:  service.NewProductService(productRepo),
		Carts:     service.NewCartService(cartRepo, productRepo),
		Checkout:  service.NewCheckoutService(checkoutRepo, tr.publisher, log),
		Orders:    service.NewOrderService(orderRepo),
		Favorites: service.NewFavoriteService(favoriteRepo, productRepo),
		Stats:     service.NewStatsService(statsRepo, salesFeed),
	}

	health := handler.NewHealthHandler().
		With("postgres", dbPool.Ping).
		With("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	if tr.check != nil {
		health.With(cfg.Events.Driver, tr.check)
	}

	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWT.Secret,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		Locks:          redisClient,
		SubmissionTTL:  cfg.HTTP.SubmissionLockTTL,
		Health:         health,
		Log:            log,
	}, services)

	if tr.consumer != nil {
		if err := tr.consumer.Start(ctx); err != nil {
			log.Error("start sales worker", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if tr.consumer != nil {
		tr.consumer.Stop()
	}
	cancel()
	log.Info("server stopped")
}

func connectEvents(cfg config.EventsConfig, salesWorker *worker.SalesWorker, log *slog.Logger) (*transport, error) {
	switch cfg.Driver {
	case config.EventsAMQP:
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("dial RabbitMQ: %w", err)
		}
		pubCh, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open publish channel: %w", err)
		}
		publisher, err := events.NewAMQPPublisher(pubCh)
		if err != nil {
			conn.Close()
			return nil, err
		}
		subCh, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open consume channel: %w", err)
		}
		return &transport{
			publisher: publisher,
			consumer:  worker.NewAMQPConsumer(subCh, salesWorker, log),
			check: func(context.Context) error {
				if conn.IsClosed() {
					return amqp.ErrClosed
				}
				return nil
			},
			close: func() {
				_ = subCh.Close()
				_ = publisher.Close()
				_ = conn.Close()
			},
		}, nil

	case config.EventsKafka:
		publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		reader := worker.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		return &transport{
			publisher: publisher,
			consumer:  worker.NewKafkaConsumer(reader, salesWorker, log),
			check: func(ctx context.Context) error {
				conn, err := kafka.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
				if err != nil {
					return err
				}
				return conn.Close()
			},
			close: func() { _ = publisher.Close() },
		}, nil
	}

	log.Warn("no event transport configured, sales feed disabled")
	return &transport{publisher: events.NopPublisher{}, close: func() {}}, nil
}
