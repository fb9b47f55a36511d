package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"glowcandles/internal/config"
	"glowcandles/internal/http/handlers"
	applog "glowcandles/internal/log"
	"glowcandles/internal/relay"
	"glowcandles/internal/repos"
)

func main() {
	cfg := config.Load()

	logger, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		// file sink unusable; keep stdout
		logger, _ = applog.New(cfg.LogLevel, "")
	}
	defer func() { _ = logger.Sync() }()
	applog.SetLogger(logger)
	zap.ReplaceGlobals(logger)

	logger.Info("starting glowcandles", cfg.Fields()...)
	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	hub := relay.NewHub()
	dispatcher := relay.NewDispatcher(hub, logger.Named("relay"), cfg.RelayBuffer, sinks(cfg, logger)...)

	deps := handlers.NewDeps(db, cfg, dispatcher, hub, logger)
	if err := deps.Auth.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("ensure admin account", zap.Error(err))
	}
	shutdown := make(chan struct{})
	deps.EventsHandler.Done = shutdown

	app := handlers.NewApp(deps, cfg, handlers.Limits{})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	close(shutdown)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("relay shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		logger.Error("close database", zap.Error(err))
	}
}

// sinks connects every configured external relay target. A target that
// cannot be reached is skipped; the admin room still works without it.
func sinks(cfg config.Config, logger *zap.Logger) []relay.Sink {
	var out []relay.Sink
	if k := relay.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic); k != nil {
		out = append(out, k)
	}
	if cfg.RedisAddr != "" {
		r, err := relay.NewRedisSink(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannel, logger)
		if err != nil {
			logger.Warn("redis relay disabled", zap.Error(err))
		} else {
			out = append(out, r)
		}
	}
	if cfg.AMQPURL != "" {
		a, err := relay.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("amqp relay disabled", zap.Error(err))
		} else {
			out = append(out, a)
		}
	}
	if cfg.SMTPHost != "" && cfg.AdminNotifyEmail != "" {
		out = append(out, relay.NewMailSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.AdminNotifyEmail))
	}
	for _, s := range out {
		logger.Info("relay sink enabled", zap.String("sink", s.Name()))
	}
	return out
}
