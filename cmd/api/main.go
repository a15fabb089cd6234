package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"tagus-watch/api/router"
	"tagus-watch/config"
	"tagus-watch/db"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("mongo init failed: %v", err)
		os.Exit(1)
	}
	defer db.Client().Disconnect(context.Background())

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler(router.New())

	srv := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: handler,
	}

	go func() {
		config.InfoWithFields("api listening", config.Fields{"addr": cfg.API.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("api server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	config.Logger.Info("shutting down api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("shutdown failed: %v", err)
	}
}
