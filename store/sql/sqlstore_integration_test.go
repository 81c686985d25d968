package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-chat/core"
	chatmigrations "github.com/goliatone/go-chat/migrations"
	sqlstore "github.com/goliatone/go-chat/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-chat-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"chat_credentials", "chat_messages"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestCredentialStore_UpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()
	if store == nil {
		t.Fatalf("expected credential store from factory")
	}

	if _, found, err := store.Get(ctx, "gemini"); err != nil || found {
		t.Fatalf("expected empty store, got found=%v err=%v", found, err)
	}

	if err := store.Put(ctx, "gemini", "AIza-first"); err != nil {
		t.Fatalf("put first credential: %v", err)
	}
	credential, found, err := store.Get(ctx, "gemini")
	if err != nil {
		t.Fatalf("get after insert: %v", err)
	}
	if !found || credential != "AIza-first" {
		t.Fatalf("get after insert = (%q, %v)", credential, found)
	}

	if err := store.Put(ctx, "gemini", "AIza-second"); err != nil {
		t.Fatalf("put replacement credential: %v", err)
	}
	credential, found, err = store.Get(ctx, "gemini")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !found || credential != "AIza-second" {
		t.Fatalf("get after update = (%q, %v)", credential, found)
	}

	var rowCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM chat_credentials WHERE provider_id = ?", "gemini",
	).Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count credential rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected single row per provider, got %d", rowCount)
	}

	if err := store.Clear(ctx, "gemini"); err != nil {
		t.Fatalf("clear credential: %v", err)
	}
	if _, found, err := store.Get(ctx, "gemini"); err != nil || found {
		t.Fatalf("expected cleared credential, got found=%v err=%v", found, err)
	}
}

func TestMessageStore_AppendListClear(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.MessageStore()
	if store == nil {
		t.Fatalf("expected message store from factory")
	}

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	bodies := []string{"hello", "hi there", "tell me more"}
	for i, body := range bodies {
		role := core.MessageRoleUser
		if i%2 == 1 {
			role = core.MessageRoleAssistant
		}
		saved, appendErr := store.Append(ctx, core.Message{
			Role:       role,
			ProviderID: "eliza",
			Body:       body,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		if appendErr != nil {
			t.Fatalf("append message %d: %v", i, appendErr)
		}
		if saved.ID == "" {
			t.Fatalf("expected generated id for message %d", i)
		}
	}

	history, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list full history: %v", err)
	}
	if len(history) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(history))
	}
	for i, msg := range history {
		if msg.Body != bodies[i] {
			t.Fatalf("expected chronological order, history[%d]=%q want %q", i, msg.Body, bodies[i])
		}
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent messages, got %d", len(recent))
	}
	if recent[0].Body != "hi there" || recent[1].Body != "tell me more" {
		t.Fatalf("unexpected recent window: %+v", recent)
	}

	if _, err := store.Append(ctx, core.Message{ProviderID: "eliza", Role: core.MessageRoleUser}); err == nil {
		t.Fatalf("expected blank body to be rejected")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	history, err = store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(history))
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:chat-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = chatmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != chatmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, chatmigrations.WithValidationTargets(chatmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
