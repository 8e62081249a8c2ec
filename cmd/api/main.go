package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-bookstore-api/internal/config"
	"github.com/flicky/go-bookstore-api/internal/handler"
	"github.com/flicky/go-bookstore-api/internal/middleware"
	"github.com/flicky/go-bookstore-api/internal/repository"
	"github.com/flicky/go-bookstore-api/internal/service"
	"github.com/flicky/go-bookstore-api/internal/session"
	"github.com/flicky/go-bookstore-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Migrations
	if cfg.Migrations.Enabled {
		if err := repository.Migrate(cfg.DB.DSN(), cfg.Migrations.Path, log); err != nil {
			log.Error("run migrations", "error", err)
			os.Exit(1)
		}
	}

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

	// RabbitMQ: one channel publishes, the other feeds the audit worker.
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	consumeCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer consumeCh.Close()

	if err := worker.DeclareTopology(consumeCh, cfg.RabbitMQ.Prefetch); err != nil {
		log.Error("declare RabbitMQ topology", "error", err)
		os.Exit(1)
	}

	publishCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer publishCh.Close()
	log.Info("connected to RabbitMQ")

	// Repositories
	bookRepo := repository.NewBookRepository(dbPool)
	clientRepo := repository.NewClientRepository(dbPool)
	employeeRepo := repository.NewEmployeeRepository(dbPool)
	blockRepo := repository.NewBlockRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	statusRepo := repository.NewOrderStatusRepository(dbPool)
	auditRepo := repository.NewAuditRepository(dbPool)

	carts := session.NewRedisCartStore(redisClient, cfg.Session.CartTTL)

	// Services
	identities := service.NewIdentityResolver(clientRepo, employeeRepo)
	authSvc := service.NewAuthService(clientRepo, blockRepo, identities, carts, cfg.JWT.Secret, cfg.JWT.Expiration)
	bookSvc := service.NewBookService(bookRepo, redisClient)
	cartSvc := service.NewCartService(carts, bookSvc, log)
	orderSvc := service.NewOrderService(orderRepo, statusRepo, auditRepo, employeeRepo, carts, identities,
		worker.NewPublisher(publishCh), log)
	profileSvc := service.NewProfileService(clientRepo, employeeRepo, identities)
	userSvc := service.NewUserService(clientRepo, employeeRepo, blockRepo, identities)

	// Router
	router, err := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Books:   handler.NewBookHandler(bookSvc),
		Cart:    handler.NewCartHandler(cartSvc),
		Orders:  handler.NewOrderHandler(orderSvc),
		Profile: handler.NewProfileHandler(profileSvc),
		Users:   handler.NewUserHandler(userSvc),
		Health: handler.NewHealthHandler(
			handler.PostgresCheck(dbPool),
			handler.RedisCheck(redisClient),
			handler.RabbitMQCheck(amqpConn),
		),
	}, middleware.AuthMiddleware(cfg.JWT.Secret), cfg.Server.CORSOrigins)
	if err != nil {
		log.Error("build router", "error", err)
		os.Exit(1)
	}

	// Worker
	auditWorker := worker.NewAuditWorker(consumeCh, auditRepo, redisClient, log)
	if err := auditWorker.Start(ctx); err != nil {
		log.Error("start audit worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	auditWorker.Stop()
	cancel()
	log.Info("server stopped")
}
