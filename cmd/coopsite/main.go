package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"coopsite/internal/config"
	"coopsite/internal/http/handlers"
	applog "coopsite/internal/log"
	"coopsite/internal/notify"
	"coopsite/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var pub notify.Publisher = notify.Nop{}
	if cfg.AMQPURL != "" {
		a, err := notify.DialAMQP(cfg.AMQPURL)
		if err != nil {
			// the site works without staff notifications
			applog.Error(nil, "notify.connect.fail", err, nil)
		} else {
			defer a.Close()
			pub = a
			applog.Info(nil, "notify.connected", map[string]any{"exchange": notify.Exchange})
		}
	}

	deps := handlers.NewDeps(db, cfg, pub)
	if cfg.AdminSeedPassword != "" {
		created, err := deps.AuthSvc.SeedAdmin(ctx, cfg.AdminSeedPassword)
		if err != nil {
			applog.Error(nil, "admin.seed.fail", err, nil)
		} else if created {
			applog.Audit(nil, "admin.seed", map[string]any{"username": "admin"})
		}
	}

	app := handlers.NewApp(cfg, deps, handlers.DefaultLimits)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[http] listening on :%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("[http] shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	g.Go(func() error {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if n, err := deps.AuthSvc.PurgeExpired(ctx); err != nil {
					applog.Error(nil, "sessions.purge.fail", err, nil)
				} else if n > 0 {
					applog.Info(nil, "sessions.purge", map[string]any{"removed": n})
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
