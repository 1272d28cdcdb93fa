package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/config"
	"github.com/Nekrasovv/web_store/internal/es"
	"github.com/Nekrasovv/web_store/internal/httpserver"
	"github.com/Nekrasovv/web_store/internal/middleware/loggingmw"
	"github.com/Nekrasovv/web_store/internal/mykafka"
	"github.com/Nekrasovv/web_store/internal/repo"
	"github.com/Nekrasovv/web_store/internal/service"
	"github.com/Nekrasovv/web_store/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.OpenDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := repo.NewGormStore(db)

	authSvc := &service.AuthService{
		Store:         store,
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
	}

	authHandler := &httpserver.AuthHandler{
		Svc:          authSvc,
		CookieSecure: cfg.CookieSecure,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		authHandler.Producer = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	productHandler := &httpserver.ProductHandler{Store: store}
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		productHandler.ES = client
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:      authHandler,
		Users:     &httpserver.UserHandler{Store: store},
		Products:  productHandler,
		Orders:    &httpserver.OrderHandler{Store: store},
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
