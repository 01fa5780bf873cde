package store

import (
	"context"
	"testing"

	"github.com/dukerupert/homestead/internal/model"
)

func TestHouseholdCreateAddsFounder(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")

	h, err := ts.households.Create(ctx, "Test Household", alice.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Test Household" {
		t.Errorf("name = %q, want %q", h.Name, "Test Household")
	}
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}

	m, err := ts.households.GetMember(ctx, h.ID, alice.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil {
		t.Fatal("expected founder membership")
	}
	if m.Role != model.RoleFounder {
		t.Errorf("role = %q, want %q", m.Role, model.RoleFounder)
	}
}

func TestHouseholdCreateUnknownFounderRollsBack(t *testing.T) {
	ts := setupTestDB(t)

	if _, err := ts.households.Create(context.Background(), "Orphan", 999); err == nil {
		t.Fatal("expected foreign key error for unknown founder")
	}
	if n := ts.count(t, `SELECT COUNT(*) FROM household`); n != 0 {
		t.Errorf("households = %d, want 0", n)
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	ts := setupTestDB(t)

	h, err := ts.households.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestHouseholdGetMemberNotFound(t *testing.T) {
	ts := setupTestDB(t)
	alice := ts.person(t, "alice@example.com")
	bob := ts.person(t, "bob@example.com")
	h := ts.household(t, "Test Household", alice.ID)

	m, err := ts.households.GetMember(context.Background(), h.ID, bob.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m != nil {
		t.Error("expected nil for non-member")
	}
}

func TestHouseholdListMembers(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")
	bob := ts.person(t, "bob@example.com")
	h := ts.household(t, "Test Household", alice.ID)

	if _, err := ts.invitations.InsertMember(ctx, model.HouseholdMember{
		HouseholdID: h.ID, PersonID: bob.ID, Role: model.RoleMember, Created: now(),
	}); err != nil {
		t.Fatalf("insert member: %v", err)
	}

	members, err := ts.households.ListMembers(ctx, h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].PersonID != alice.ID || members[0].Role != model.RoleFounder {
		t.Errorf("first member = %+v, want founder alice", members[0])
	}
	if members[1].Email != "bob@example.com" {
		t.Errorf("second member email = %q, want %q", members[1].Email, "bob@example.com")
	}
}

func TestHouseholdListForPerson(t *testing.T) {
	ts := setupTestDB(t)
	ctx := context.Background()
	alice := ts.person(t, "alice@example.com")
	bob := ts.person(t, "bob@example.com")
	ts.household(t, "Household A", alice.ID)
	hb := ts.household(t, "Household B", bob.ID)

	if _, err := ts.invitations.InsertMember(ctx, model.HouseholdMember{
		HouseholdID: hb.ID, PersonID: alice.ID, Role: model.RoleMember, Created: now(),
	}); err != nil {
		t.Fatalf("insert member: %v", err)
	}

	households, err := ts.households.ListForPerson(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list households for person: %v", err)
	}
	if len(households) != 2 {
		t.Fatalf("expected 2 households, got %d", len(households))
	}
	if households[0].Name != "Household A" || households[0].Role != model.RoleFounder {
		t.Errorf("first = %+v, want Household A as founder", households[0])
	}
	if households[1].Name != "Household B" || households[1].Role != model.RoleMember {
		t.Errorf("second = %+v, want Household B as member", households[1])
	}
}
