package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garmentscore/internal/app"
	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/transport/rest"
	"garmentscore/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.AI.IsEnabled() {
		log.Info("narrative model configured", "model", cfg.AI.Model, "base_url", cfg.AI.BaseURL, "timeout", cfg.AI.Timeout())
	} else {
		log.Warn("OPENAI_API_KEY not set, reports use the rule-based narrative")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", "error", err)
	}
	defer a.Close(context.Background())

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.AssessmentService.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:       a.AuthService,
		CatalogService:    a.CatalogService,
		AssessmentService: a.AssessmentService,
		ReportService:     a.ReportService,
		WSHub:             wsHub,
		CORSOrigins:       cfg.CORSOrigins,
		Log:               log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "admin", cfg.AdminUsername)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
