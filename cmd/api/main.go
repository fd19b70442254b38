package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/cache"
	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/database"
	"github.com/emilythestrangee/yatube/internal/logging"
	"github.com/emilythestrangee/yatube/internal/server"
	"github.com/emilythestrangee/yatube/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot load configuration")
	}
	logging.Init(cfg.LogLevel, cfg.LogJSON)
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot open database")
	}
	defer db.Close()

	pageCache, err := cache.New(ctx, cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot connect page cache")
	}
	st, err := storage.New(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot open media storage")
	}

	srv := server.NewServer(cfg, db, pageCache, st)
	go srv.CleanupSessions(ctx, server.SessionCleanupInterval)
	httpServer, err := srv.HTTPServer()
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot build router")
	}

	if len(cfg.TLSDomains) > 0 {
		logging.Log.WithField("domains", cfg.TLSDomains).Info("serving with automatic TLS")
		if err := autotls.RunWithContext(ctx, httpServer.Handler, cfg.TLSDomains...); err != nil {
			logging.Log.WithError(err).Fatal("server stopped")
		}
		return
	}

	go func() {
		logging.Log.WithField("address", httpServer.Addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	logging.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Log.WithError(err).Error("forced shutdown")
	}
	logging.Log.Info("server stopped")
}
