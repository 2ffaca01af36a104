package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Timezone:               "UTC",
		SessionBackend:         appconfig.SessionBackendMemory,
		SessionTTL:             time.Hour,
		SessionLockTTL:         time.Second,
		MaxSessions:            100,
		ArchiveBreakerFailures: 3,
		ArchiveBreakerTimeout:  time.Second,
	}
}

func TestBuildRuntimeRequiresConfig(t *testing.T) {
	if _, err := BuildRuntime(context.Background(), nil, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildRuntimeRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus_Mons"

	if _, err := BuildRuntime(context.Background(), cfg, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestBuildRuntimeRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.SessionBackend = "etcd"

	_, err := BuildRuntime(context.Background(), cfg, nil, logging.New("error"))
	if err == nil || !strings.Contains(err.Error(), "etcd") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestBuildRuntimeMemoryArchivesConfirmedMeetings(t *testing.T) {
	cfg := testConfig()
	reg := prometheus.NewRegistry()

	rt, err := BuildRuntime(context.Background(), cfg, reg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()
	if rt.Metrics == nil {
		t.Fatalf("expected metrics when a registry is given")
	}

	ctx := context.Background()
	for _, utterance := range []string{
		"customer is Alice",
		"schedule a meeting next friday at 3pm for 30 minutes",
		"yes",
	} {
		if _, err := rt.Engine.HandleTurn(ctx, "s-1", utterance); err != nil {
			t.Fatalf("turn %q: %v", utterance, err)
		}
	}

	archived, err := rt.Archive.ListBySession(ctx, "s-1")
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	if len(archived) != 1 || archived[0].Customer != "Alice" {
		t.Fatalf("expected Alice's meeting in the archive, got %+v", archived)
	}
}

func TestBuildRuntimeRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.SessionBackend = appconfig.SessionBackendRedis
	cfg.RedisAddr = mr.Addr()

	rt, err := BuildRuntime(context.Background(), cfg, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rt.Close()

	reply, err := rt.Engine.HandleTurn(context.Background(), "s-1", "customer is Alice")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if reply.Status != dialogue.StatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", reply.Status)
	}
	if !mr.Exists("meeting_session:s-1") {
		t.Fatalf("expected session state in redis")
	}
}

func TestBuildRuntimeRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.SessionBackend = appconfig.SessionBackendRedis
	cfg.RedisAddr = addr

	if _, err := BuildRuntime(context.Background(), cfg, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, false); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildArchiveRejectsBadDatabaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "postgres://%zz"

	if _, _, err := BuildArchive(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error for malformed DATABASE_URL")
	}
}
