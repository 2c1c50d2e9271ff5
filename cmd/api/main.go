package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"mediflow/internal/adapters/storage/postgres"
	"mediflow/internal/config"
	"mediflow/internal/platform/logger"
	"mediflow/internal/router"
)

const notificationRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "mediflow-api",
	})

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("db open failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.Error("schema init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	app := router.New(router.Options{
		SessionTTL: time.Duration(cfg.SessionTTLDays) * 24 * time.Hour,
		Log:        log,
		DB:         db,
	})

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, created, err := app.Users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail)
		cancel()
		if err != nil {
			log.Error("admin seed failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		if created {
			log.Info("admin user created", map[string]any{"username": cfg.AdminUsername})
		}
	}

	// Job diario: borra notificaciones leídas viejas.
	jobs := cron.New()
	_, err = jobs.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := app.Notifications.PruneRead(ctx, notificationRetention)
		if err != nil {
			log.Warn("notification prune failed", map[string]any{"err": err.Error()})
			return
		}
		if n > 0 {
			log.Info("notifications pruned", map[string]any{"deleted": n})
		}
	})
	if err != nil {
		log.Error("cron setup failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", map[string]any{"err": err.Error()})
		}
	}
}
