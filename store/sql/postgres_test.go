package sqlstore

import (
	"testing"
	"time"
)

func TestPostgresConfig_Defaults(t *testing.T) {
	cfg := PostgresConfig{DSN: "postgres://localhost/chat"}
	if cfg.GetDriver() != "postgres" {
		t.Fatalf("driver = %q", cfg.GetDriver())
	}
	if cfg.GetServer() != "postgres://localhost/chat" {
		t.Fatalf("server = %q", cfg.GetServer())
	}
	if cfg.GetPingTimeout() != 5*time.Second {
		t.Fatalf("default ping timeout = %v", cfg.GetPingTimeout())
	}
	if cfg.GetOtelIdentifier() != "go-chat" {
		t.Fatalf("default otel identifier = %q", cfg.GetOtelIdentifier())
	}

	cfg.PingTimeout = time.Second
	cfg.OtelIdentifier = "chat-api"
	if cfg.GetPingTimeout() != time.Second || cfg.GetOtelIdentifier() != "chat-api" {
		t.Fatalf("overrides not honored: %v %q", cfg.GetPingTimeout(), cfg.GetOtelIdentifier())
	}
}

func TestNewPostgresClient_RequiresDSN(t *testing.T) {
	if _, err := NewPostgresClient(PostgresConfig{DSN: "   "}); err == nil {
		t.Fatalf("expected blank dsn rejection")
	}
}
