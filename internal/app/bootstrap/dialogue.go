package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	"github.com/wolfman30/meeting-assistant/internal/meetings"
	"github.com/wolfman30/meeting-assistant/internal/observability/metrics"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// Runtime is everything a process needs to serve dialogue turns.
type Runtime struct {
	Engine  *dialogue.Engine
	Archive *meetings.BreakerRepository
	Metrics *metrics.TurnMetrics

	closers []func()
}

// Close releases connections held by the runtime, newest first.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// BuildRuntime wires the session store, meeting archive and metrics from
// config. reg may be nil to skip metrics.
func BuildRuntime(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load timezone %q: %w", cfg.Timezone, err)
	}

	rt := &Runtime{}
	store, err := buildSessionStore(ctx, cfg, logger, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	archive, closeArchive, err := BuildArchive(ctx, cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Archive = archive
	rt.closers = append(rt.closers, closeArchive)

	if reg != nil {
		rt.Metrics = metrics.NewTurnMetrics(reg)
	}

	rt.Engine = dialogue.NewEngine(store, logger,
		dialogue.WithArchive(archive),
		dialogue.WithMetrics(rt.Metrics),
		dialogue.WithLocation(loc),
		dialogue.WithDefaultDuration(cfg.DefaultMeetingMinutes),
	)
	logger.Info("dialogue engine ready",
		"session_backend", cfg.SessionBackend,
		"timezone", loc.String(),
		"default_minutes", cfg.DefaultMeetingMinutes,
	)
	return rt, nil
}

func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, rt *Runtime) (dialogue.Store, error) {
	switch cfg.SessionBackend {
	case appconfig.SessionBackendRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis session backend unavailable at %q", cfg.RedisAddr)
		}
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		logger.Info("dialogue sessions stored in redis", "redis", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return dialogue.NewRedisStore(client, cfg.SessionTTL, cfg.SessionLockTTL, nil), nil
	case appconfig.SessionBackendMemory, "":
		logger.Info("dialogue sessions stored in memory", "max_sessions", cfg.MaxSessions, "ttl", cfg.SessionTTL.String())
		return dialogue.NewMemoryStore(cfg.MaxSessions, cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}
}
