package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/api"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/auth"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/config"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/database"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/logger"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/monitoring"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	auth.Init(cfg.JWTSecret, cfg.TokenTTL)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)
	taskService := services.NewTaskService(db, eventService, hub)

	// Set up and run the background due-date reminder
	reminder, err := monitoring.NewReminder(taskService, eventService, hub, cfg.ReminderCron)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize reminder loop")
	}
	go reminder.Run()

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(db, cfg.StatsInterval)
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(hub, userService, taskService, eventService, statUpdater, cfg.CORSAllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reminder.Stop()
	statUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
