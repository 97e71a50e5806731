package config

import (
	"fmt"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"kursadmin"`
	Password string `env:"PASSWORD" envDefault:"kursadmin"`
	Name     string `env:"NAME"     envDefault:"kursadmin"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN returns the connection string for database/sql with the pgx driver.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig contains Redis configuration for the course-list cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled toggles the Redis-backed cache; the app degrades to
	// database-only reads when it is off.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// CacheConfig contains cache tuning knobs.
type CacheConfig struct {
	// CourseTTL is the TTL for the cached course list.
	CourseTTL time.Duration `env:"CACHE_COURSE_TTL" envDefault:"2m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.CourseTTL <= 0 {
		c.CourseTTL = 2 * time.Minute
	}
}
