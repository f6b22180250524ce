package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/danuart/invitation-shop/internal/config"
	"github.com/danuart/invitation-shop/internal/es"
	"github.com/danuart/invitation-shop/internal/httpserver"
	"github.com/danuart/invitation-shop/internal/logging"
	"github.com/danuart/invitation-shop/internal/mykafka"
	"github.com/danuart/invitation-shop/internal/repo"
	"github.com/danuart/invitation-shop/internal/service/auth"
	"github.com/danuart/invitation-shop/internal/service/catalog"
	"github.com/danuart/invitation-shop/internal/service/order"
	"github.com/danuart/invitation-shop/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.RefreshSecret, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	db, err := config.OpenDB(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	files, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	esClient, err := esClientIfConfigured(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	r := repo.New(db)
	redisClient := config.NewRedisClient(cfg)
	if redisClient == nil {
		logger.Warn("redis unavailable, template cache disabled")
	}

	authSvc := auth.New(r, []byte(cfg.JWTSecret), []byte(cfg.RefreshSecret))
	catalogSvc := catalog.New(r, redisClient, cfg.CacheTTLDuration())
	orderSvc := order.New(r, files)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthSvc:         authSvc,
		AuthHandler:     &httpserver.AuthHandler{Svc: authSvc, Producer: producer},
		TemplateHandler: &httpserver.TemplateHandler{Svc: catalogSvc, ES: esClient, ESIndex: catalog.TemplateIndex},
		OrderHandler:    &httpserver.OrderHandler{Svc: orderSvc, Files: files, Producer: producer},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func esClientIfConfigured(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ESURL == "" {
		return nil, nil
	}
	return es.NewClient(cfg)
}
