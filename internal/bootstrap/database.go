package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/redis/go-redis/v9"

	"github.com/k2kurs/kursadmin/config"
	"github.com/k2kurs/kursadmin/internal/data"
	"github.com/k2kurs/kursadmin/internal/migrate"
)

// ConnectDB opens the PostgreSQL pool. A failed ping is logged but not
// fatal: database/sql reconnects lazily, and the session layer is built to
// ride out store outages on its cookie tier.
func ConnectDB(cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	// Build DSN using url.URL to safely handle special characters in credentials
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()

	db, err := sql.Open("pgx", u.String())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		logger.Warn("database unreachable at startup, continuing degraded",
			"host", cfg.Host, "port", cfg.Port, "error", pingErr)
		return db, nil
	}

	logger.Info("database connected",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)

	if cfg.RunMigrationsOnStart {
		if err := migrate.Run(ctx, db); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return db, nil
}

// ConnectRedis connects the course-list cache. Returns nil when the cache is
// disabled or unreachable; callers treat a nil client as "no cache".
//
//nolint:ireturn // redis.UniversalClient keeps single-node and cluster setups interchangeable.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) redis.UniversalClient {
	if !cfg.Enabled {
		logger.Info("redis cache disabled")
		return nil
	}

	client := data.NewRedisClient(cfg.Addr, cfg.Password, cfg.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, running without cache", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return client
}
