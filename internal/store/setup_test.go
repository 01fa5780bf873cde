package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homestead/internal/database"
	"github.com/dukerupert/homestead/internal/model"
)

type testStores struct {
	db          *sql.DB
	people      *PersonStore
	households  *HouseholdStore
	invitations *InvitationStore
	sessions    *SessionStore
}

func setupTestDB(t *testing.T) *testStores {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	people := NewPersonStore(db)
	people.cost = bcrypt.MinCost
	return &testStores{
		db:          db,
		people:      people,
		households:  NewHouseholdStore(db),
		invitations: NewInvitationStore(db),
		sessions:    NewSessionStore(db, time.Hour),
	}
}

func (ts *testStores) person(t *testing.T, email string) *model.Person {
	t.Helper()
	p, err := ts.people.Create(context.Background(), email, email, "secret-password")
	if err != nil {
		t.Fatalf("create person %s: %v", email, err)
	}
	return p
}

func (ts *testStores) household(t *testing.T, name string, founderID int64) *model.Household {
	t.Helper()
	h, err := ts.households.Create(context.Background(), name, founderID)
	if err != nil {
		t.Fatalf("create household %s: %v", name, err)
	}
	return h
}

func (ts *testStores) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := ts.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
