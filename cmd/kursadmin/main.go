package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/k2kurs/kursadmin/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting kursadmin",
		"auth_mode", cfg.Auth.Mode,
		"dev", cfg.IsDev,
		"addr", cfg.HTTP.Addr,
	)

	db, err := bootstrap.ConnectDB(cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	redisClient := bootstrap.ConnectRedis(cfg.Redis, logger)
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	provider, err := bootstrap.CreateAuthProvider(cfg.Auth, logger)
	if err != nil {
		return err
	}

	services := bootstrap.BuildServices(bootstrap.ServicesConfig{
		Config:   &cfg,
		DB:       db,
		Redis:    redisClient,
		Provider: provider,
		Logger:   logger,
	})

	encryptor := bootstrap.CreateEncryptor(cfg.CookieEncryptionKey, logger)

	server, err := bootstrap.StartHTTPServer(bootstrap.HTTPServerConfig{
		Config:    &cfg,
		Services:  services,
		Encryptor: encryptor,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	logger.InfoContext(ctx, "shutting down", "signal", sig.String())

	bootstrap.ShutdownHTTPServer(ctx, server, &cfg, logger)
	return nil
}
