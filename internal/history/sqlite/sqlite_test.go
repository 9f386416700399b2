package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/procguard/internal/history"
)

func TestSQLiteSink_Integration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	sink, err := New("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()
	events := []history.Event{
		{
			Type:       history.EventStarted,
			OccurredAt: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
			Signature:  "/srv/app/bot.py",
			Command:    "python3 -u /srv/app/bot.py",
			LogPath:    "/var/log/bot/run-20240115-093000.log",
			PID:        4242,
		},
		{
			Type:       history.EventRunning,
			OccurredAt: time.Date(2024, 1, 15, 9, 31, 0, 0, time.UTC),
			Signature:  "/srv/app/bot.py",
		},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Failed to send %s event: %v", e.Type, err)
		}
	}

	var count int
	if err := sink.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM guard_history WHERE signature = ?", "/srv/app/bot.py").Scan(&count); err != nil {
		t.Fatalf("Failed to query guard_history: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 events in history, got %d", count)
	}

	var logPath string
	var pid int
	if err := sink.db.QueryRowContext(ctx, "SELECT log_path, pid FROM guard_history WHERE outcome = ?", "started").Scan(&logPath, &pid); err != nil {
		t.Fatalf("Failed to query started row: %v", err)
	}
	if logPath != events[0].LogPath || pid != 4242 {
		t.Errorf("unexpected started row: %q %d", logPath, pid)
	}
}

func TestSQLiteSink_Memory(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() { _ = sink.Close() }()
	if err := sink.Send(context.Background(), history.Event{Type: history.EventRunning, OccurredAt: time.Now(), Signature: "x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
