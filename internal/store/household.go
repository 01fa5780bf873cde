package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/homestead/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(s scanner) (*model.Household, error) {
	var h model.Household
	err := s.Scan(&h.ID, &h.Name, &h.Created)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHouseholdMember(s scanner) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := s.Scan(&m.HouseholdID, &m.PersonID, &m.Role, &m.Created)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const householdCols = `id, name, created`
const householdMemberCols = `household_id, person_id, role, created`

// Create inserts a household and its founder membership in a single
// transaction.
func (s *HouseholdStore) Create(ctx context.Context, name string, founderID int64) (*model.Household, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created := now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO household (name, created) VALUES (?, ?)`, name, created,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO household_member (household_id, person_id, role, created) VALUES (?, ?, ?, ?)`,
		id, founderID, model.RoleFounder, created,
	); err != nil {
		return nil, fmt.Errorf("insert founder: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+householdCols+` FROM household WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByID(ctx context.Context, id int64) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM household WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetMember(ctx context.Context, householdID, personID int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+householdMemberCols+` FROM household_member WHERE household_id = ? AND person_id = ?`,
		householdID, personID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *HouseholdStore) ListMembers(ctx context.Context, householdID int64) ([]model.MemberProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hm.household_id, hm.person_id, hm.role, hm.created, p.name, p.email
		 FROM household_member hm
		 JOIN person p ON p.id = hm.person_id
		 WHERE hm.household_id = ?
		 ORDER BY hm.created ASC, hm.person_id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.MemberProfile
	for rows.Next() {
		var m model.MemberProfile
		if err := rows.Scan(&m.HouseholdID, &m.PersonID, &m.Role, &m.Created, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *HouseholdStore) ListForPerson(ctx context.Context, personID int64) ([]model.HouseholdMembership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id, h.name, h.created, hm.role
		 FROM household h
		 JOIN household_member hm ON h.id = hm.household_id
		 WHERE hm.person_id = ?
		 ORDER BY h.name ASC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("list households for person: %w", err)
	}
	defer rows.Close()

	var households []model.HouseholdMembership
	for rows.Next() {
		var h model.HouseholdMembership
		if err := rows.Scan(&h.ID, &h.Name, &h.Created, &h.Role); err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, h)
	}
	return households, rows.Err()
}
