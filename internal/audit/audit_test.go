package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/models"
	"github.com/drerries/wantedboard/internal/registry"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.AuditLog{}, &models.WantedPerson{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func TestRecordAndList(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Record(ctx, "whitelist.add", "mod-1", "ModeratorPiet", "u1", map[string]any{"notes": "trusted"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, "whitelist.remove", "mod-1", "ModeratorPiet", "u2", nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	all, err := svc.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("entries = %d, want 2", len(all))
	}

	adds, err := svc.List(ctx, "whitelist.add", 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(adds) != 1 || adds[0].TargetID != "u1" {
		t.Errorf("filtered = %+v, want the single whitelist.add entry", adds)
	}
}

func TestListenRecordsWantedMutations(t *testing.T) {
	db := openTestDB(t)
	bus := events.NewBus()
	svc := NewService(db, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		svc.Listen(ctx, bus)
		close(done)
	}()

	posters := registry.NewService(db, bus, zerolog.Nop())
	modCtx := auth.WithClaims(context.Background(), &auth.Claims{
		UserID:   "mod-1",
		Username: "ModeratorPiet",
		Role:     auth.RoleAdmin,
	})
	person, err := posters.Create(modCtx, registry.CreateInput{
		Username:    "alice",
		DrerriesTag: "alice#1",
		Charges:     []string{"Bankoverval"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var entry *models.AuditLog
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := svc.List(context.Background(), string(events.EventWantedCreated), 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) > 0 {
			entry = &entries[0]
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if entry == nil {
		t.Fatal("no audit entry written for wanted.created")
	}

	if entry.ActorID != "mod-1" || entry.ActorName != "ModeratorPiet" {
		t.Errorf("actor = %s/%s, want mod-1/ModeratorPiet", entry.ActorID, entry.ActorName)
	}
	if entry.TargetID != person.ID {
		t.Errorf("target = %q, want %q", entry.TargetID, person.ID)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
}
