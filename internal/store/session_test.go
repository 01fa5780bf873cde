package store

import (
	"context"
	"testing"
	"time"
)

func TestSessionCreate(t *testing.T) {
	ts := setupTestDB(t)
	alice := ts.person(t, "alice@example.com")

	sess, err := ts.sessions.Create(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.PersonID != alice.ID {
		t.Errorf("person_id = %d, want %d", sess.PersonID, alice.ID)
	}
	if !sess.ExpiresAt.After(sess.Created) {
		t.Errorf("expires_at %v not after created %v", sess.ExpiresAt, sess.Created)
	}
}

func TestSessionGetByToken(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")
	created, _ := ts.sessions.Create(ctx, alice.ID)

	sess, err := ts.sessions.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ts := setupTestDB(t)

	sess, err := ts.sessions.GetByToken(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionExpired(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")

	expired := NewSessionStore(ts.db, -time.Minute)
	sess, err := expired.Create(ctx, alice.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := ts.sessions.GetByToken(ctx, sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}

	live, _ := ts.sessions.Create(ctx, alice.ID)
	n, err := ts.sessions.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if got, _ := ts.sessions.GetByToken(ctx, live.Token); got == nil {
		t.Error("expected live session to survive cleanup")
	}
}

func TestSessionDelete(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")
	created, _ := ts.sessions.Create(ctx, alice.ID)

	if err := ts.sessions.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sess, err := ts.sessions.GetByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteOthers(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")
	keep, _ := ts.sessions.Create(ctx, alice.ID)
	ts.sessions.Create(ctx, alice.ID)
	ts.sessions.Create(ctx, alice.ID)

	if err := ts.sessions.DeleteOthers(ctx, alice.ID, keep.ID); err != nil {
		t.Fatalf("delete others: %v", err)
	}

	if n := ts.count(t, `SELECT COUNT(*) FROM session WHERE person_id = ?`, alice.ID); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}
