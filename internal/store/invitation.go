package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/model"
)

// InvitationStore is the invitation service's view of the database. Outside
// a transaction q is the pool; inside InTx it is the open *sql.Tx.
type InvitationStore struct {
	db *sql.DB
	q  dbtx
}

func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db, q: db}
}

var _ invitation.Gateway = (*InvitationStore)(nil)
var _ invitation.Queries = (*InvitationStore)(nil)

func (s *InvitationStore) InTx(ctx context.Context, fn func(invitation.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&InvitationStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *InvitationStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *InvitationStore) IsFounder(ctx context.Context, personID, householdID int64) (bool, error) {
	ok, err := s.exists(ctx,
		`SELECT 1 FROM household_member WHERE household_id = ? AND person_id = ? AND role = ?`,
		householdID, personID, model.RoleFounder,
	)
	if err != nil {
		return false, fmt.Errorf("check founder: %w", err)
	}
	return ok, nil
}

func (s *InvitationStore) IsMember(ctx context.Context, personID, householdID int64) (bool, error) {
	ok, err := s.exists(ctx,
		`SELECT 1 FROM household_member WHERE household_id = ? AND person_id = ?`,
		householdID, personID,
	)
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return ok, nil
}

func (s *InvitationStore) HasInvitation(ctx context.Context, toPersonID, householdID int64) (bool, error) {
	ok, err := s.exists(ctx,
		`SELECT 1 FROM household_invitation WHERE household_id = ? AND to_person_id = ?`,
		householdID, toPersonID,
	)
	if err != nil {
		return false, fmt.Errorf("check invitation: %w", err)
	}
	return ok, nil
}

func (s *InvitationStore) FindPersonByEmail(ctx context.Context, email string) (int64, bool, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM person WHERE email = ?`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find person by email: %w", err)
	}
	return id, true, nil
}

func (s *InvitationStore) InsertInvitation(ctx context.Context, inv model.HouseholdInvitation) (bool, error) {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO household_invitation (household_id, from_person_id, to_person_id, created) VALUES (?, ?, ?, ?)`,
		inv.HouseholdID, inv.FromPersonID, inv.ToPersonID, inv.Created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert invitation: %w", err)
	}
	return true, nil
}

func (s *InvitationStore) InsertMember(ctx context.Context, m model.HouseholdMember) (bool, error) {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO household_member (household_id, person_id, role, created) VALUES (?, ?, ?, ?)`,
		m.HouseholdID, m.PersonID, m.Role, m.Created,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert member: %w", err)
	}
	return true, nil
}

func (s *InvitationStore) DeleteInvitationTo(ctx context.Context, householdID, toPersonID int64) (int64, bool, error) {
	var fromID int64
	err := s.q.QueryRowContext(ctx,
		`DELETE FROM household_invitation WHERE household_id = ? AND to_person_id = ? RETURNING from_person_id`,
		householdID, toPersonID,
	).Scan(&fromID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("delete invitation: %w", err)
	}
	return fromID, true, nil
}

func (s *InvitationStore) DeleteInvitationFrom(ctx context.Context, householdID, fromPersonID, toPersonID int64) (bool, error) {
	result, err := s.q.ExecContext(ctx,
		`DELETE FROM household_invitation WHERE household_id = ? AND from_person_id = ? AND to_person_id = ?`,
		householdID, fromPersonID, toPersonID,
	)
	if err != nil {
		return false, fmt.Errorf("delete sent invitation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

const invitationViewQuery = `SELECT i.household_id, i.from_person_id, i.to_person_id, i.created,
	       h.name, f.name, t.name, t.email
	FROM household_invitation i
	JOIN household h ON h.id = i.household_id
	JOIN person f ON f.id = i.from_person_id
	JOIN person t ON t.id = i.to_person_id`

func (s *InvitationStore) listViews(ctx context.Context, where string, arg int64) ([]model.InvitationView, error) {
	rows, err := s.q.QueryContext(ctx, invitationViewQuery+` WHERE `+where+` ORDER BY i.created ASC, i.to_person_id ASC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.InvitationView
	for rows.Next() {
		var v model.InvitationView
		if err := rows.Scan(
			&v.HouseholdID, &v.FromPersonID, &v.ToPersonID, &v.Created,
			&v.HouseholdName, &v.FromName, &v.ToName, &v.ToEmail,
		); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ListIncoming returns the invitations addressed to personID.
func (s *InvitationStore) ListIncoming(ctx context.Context, personID int64) ([]model.InvitationView, error) {
	views, err := s.listViews(ctx, `i.to_person_id = ?`, personID)
	if err != nil {
		return nil, fmt.Errorf("list incoming invitations: %w", err)
	}
	return views, nil
}

func (s *InvitationStore) ListForHousehold(ctx context.Context, householdID int64) ([]model.InvitationView, error) {
	views, err := s.listViews(ctx, `i.household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list household invitations: %w", err)
	}
	return views, nil
}
