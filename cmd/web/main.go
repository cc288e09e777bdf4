package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskpanel/internal/backend"
	"taskpanel/internal/config"
	"taskpanel/internal/session"
	"taskpanel/internal/webapp"
	"taskpanel/pkg/logger"
	"taskpanel/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cookieCfg := session.CookieConfig{
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	var sessions session.Binder
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		sessions = session.NewRedisManager(rdb, cookieCfg)
	default:
		sessions = session.NewCookieManager(cookieCfg)
	}

	h := webapp.Handlers{
		Sessions: sessions,
		Backend:  backend.NewClient(cfg.API.BaseURL, &http.Client{Timeout: 30 * time.Second}),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.SetHTMLTemplate(webapp.Templates())

	registerRoutes(r, h, sessions)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("web client listening", "addr", srv.Addr, "env", cfg.App.Env, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
