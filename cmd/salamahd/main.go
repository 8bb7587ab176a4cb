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

	"github.com/SherClockHolmes/webpush-go"

	"salamah-backend/config"
	"salamah-backend/internal/absence"
	"salamah-backend/internal/api"
	"salamah-backend/internal/attendance"
	"salamah-backend/internal/clock"
	"salamah-backend/internal/db"
	"salamah-backend/internal/notify"
	"salamah-backend/internal/push"
	"salamah-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "salamah-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	clk := clock.System()
	cal := clock.NewCalendar(cfg.Attendance.UTCOffsetHours)

	var dashboard push.Channel
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		dashboard = push.NewWebPushChannel(appStore, webpushOptions)
	} else {
		logger.Println("VAPID keys are not configured; dashboard push is disabled")
	}

	delivery, err := push.NewEmailChannel(&cfg.Mail)
	if err != nil {
		logger.Fatalf("failed to initialize email channel: %v", err)
	}

	dispatcher := notify.NewDispatcher(appStore, clk, delivery, dashboard)
	cooldown := notify.NewCooldown(appStore, cfg.Notification.Cooldown)
	notifications := notify.NewService(appStore, clk, cal, cooldown, dispatcher)
	scans := attendance.NewService(appStore, clk, cal, notifications)
	absences := absence.NewRegistry(clk, cal)

	handler := api.NewHandler(appStore, scans, notifications, absences, webpushOptions)
	router := api.NewRouter(handler)
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
