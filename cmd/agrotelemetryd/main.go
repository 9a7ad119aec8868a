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

	"agro-telemetry-backend/config"
	"agro-telemetry-backend/internal/alert"
	"agro-telemetry-backend/internal/api"
	"agro-telemetry-backend/internal/auth"
	"agro-telemetry-backend/internal/bus"
	"agro-telemetry-backend/internal/db"
	"agro-telemetry-backend/internal/engine"
	"agro-telemetry-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	logger := log.New(os.Stdout, "agro-telemetry ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	queryEngine := engine.New(appStore)
	authSvc := auth.NewService(auth.NewStaticProvider(cfg.Auth.Users), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var busClient *bus.Client
	if cfg.Bus.Enabled {
		busClient, err = bus.Connect(cfg.Bus.URL, cfg.Bus.ClientID)
		if err != nil {
			logger.Fatalf("failed to connect to bus at %s: %v", cfg.Bus.URL, err)
		}
		defer busClient.Close()

		listener := bus.NewListener(appStore)
		if err := listener.Run(ctx, busClient, cfg.Bus.Topic); err != nil {
			logger.Fatalf("failed to subscribe to %s: %v", cfg.Bus.Topic, err)
		}
	} else {
		logger.Println("bus ingestion is disabled")
	}

	if cfg.Alerts.Enabled {
		pool := alert.NewWorkerPool(cfg.Alerts.WorkerPoolSize, gormDB, &webpushOptions)
		sweeper := alert.NewSweeper(appStore, pool, cfg.Alerts.Interval)
		go sweeper.Run(ctx)
	} else {
		logger.Println("offline alerts are disabled")
	}

	router := api.NewRouter(&cfg.Server, queryEngine, authSvc, appStore, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
