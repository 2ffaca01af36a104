package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildArchive returns the repository confirmed meetings are written to,
// wrapped in a circuit breaker. Without DATABASE_URL meetings are kept in
// process memory. The returned func releases the connection pool.
func BuildArchive(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*meetings.BreakerRepository, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		next    meetings.Repository
		cleanup = func() {}
	)
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: open meeting archive: %w", err)
		}
		next = meetings.NewPostgresRepository(pool)
		cleanup = pool.Close
		logger.Info("meeting archive backed by postgres")
	} else {
		logger.Warn("DATABASE_URL not set; confirmed meetings are kept in memory")
		next = meetings.NewInMemoryRepository()
	}

	archive := meetings.NewBreakerRepository(next, meetings.BreakerSettings{
		Name:             "meeting-archive",
		FailureThreshold: cfg.ArchiveBreakerFailures,
		OpenTimeout:      cfg.ArchiveBreakerTimeout,
	}, logger)
	return archive, cleanup, nil
}
