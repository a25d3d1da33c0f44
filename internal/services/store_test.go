package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/isdelr/machine-monitor-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() error = %v", err)
	}
	return db
}

func TestSQLUserStore_CreateAndGet(t *testing.T) {
	store := NewSQLUserStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.CreateUser(ctx, "alice", "a@x.com", "hash-a")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateUser() id = %d, want positive", id)
	}

	second, err := store.CreateUser(ctx, "bob", "b@x.com", "hash-b")
	if err != nil {
		t.Fatalf("CreateUser(bob) error = %v", err)
	}
	if second == id {
		t.Error("ids must be distinct")
	}

	byName, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName.ID != id || byName.Email != "a@x.com" || byName.PasswordHash != "hash-a" {
		t.Errorf("GetUserByUsername() = %+v", byName)
	}
	if byName.CreatedAt.IsZero() {
		t.Error("expected created_at to be populated")
	}

	byID, err := store.GetUserByID(ctx, second)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Username != "bob" {
		t.Errorf("GetUserByID() = %+v", byID)
	}
}

func TestSQLUserStore_DuplicateUsername(t *testing.T) {
	store := NewSQLUserStore(newTestDB(t))
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "alice", "a@x.com", "hash"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	_, err := store.CreateUser(ctx, "alice", "other@x.com", "hash")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicateUsername", err)
	}

	// Emails are not unique.
	if _, err := store.CreateUser(ctx, "alice2", "a@x.com", "hash"); err != nil {
		t.Errorf("CreateUser() with reused email error = %v", err)
	}
}

func TestSQLUserStore_NotFound(t *testing.T) {
	store := NewSQLUserStore(newTestDB(t))
	ctx := context.Background()

	if _, err := store.GetUserByUsername(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByUsername() error = %v, want ErrUserNotFound", err)
	}
	if _, err := store.GetUserByID(ctx, 42); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrUserNotFound", err)
	}
}

func TestEventService_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	store := NewSQLUserStore(db)
	events := NewEventService(db)
	ctx := context.Background()

	uid, err := store.CreateUser(ctx, "alice", "a@x.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := events.CreateEvent(ctx, EventUserRegister, "info", "first", &uid); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if err := events.CreateEvent(ctx, EventUserLoginFail, "warn", "second", nil); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if err := events.CreateEvent(ctx, EventUserLogin, "info", "third", &uid); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	got, err := events.GetRecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "third" || got[1].Message != "second" {
		t.Errorf("order = [%s %s], want [third second]", got[0].Message, got[1].Message)
	}
	if got[0].UserID == nil || *got[0].UserID != uid {
		t.Errorf("UserID = %v, want %d", got[0].UserID, uid)
	}
	if got[1].UserID != nil {
		t.Errorf("anonymous event UserID = %v, want nil", *got[1].UserID)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Errorf("event missing id or timestamp: %+v", got[0])
	}
}

func TestEventService_EmptyList(t *testing.T) {
	events := NewEventService(newTestDB(t))
	got, err := events.GetRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentEvents() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("GetRecentEvents() = %v, want empty non-nil slice", got)
	}
}
