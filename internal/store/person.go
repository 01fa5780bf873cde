package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/homestead/internal/model"
)

type PersonStore struct {
	db   *sql.DB
	cost int
}

func NewPersonStore(db *sql.DB) *PersonStore {
	return &PersonStore{db: db, cost: bcrypt.DefaultCost}
}

func scanPerson(s scanner) (*model.Person, error) {
	var p model.Person
	err := s.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.Created)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const personCols = `id, email, name, password_hash, created`

// Create registers a person. It returns ErrDuplicate if the email is taken.
func (s *PersonStore) Create(ctx context.Context, email, name, password string) (*model.Person, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO person (email, name, password_hash, created) VALUES (?, ?, ?, ?)`,
		email, name, string(hash), now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert person: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PersonStore) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personCols+` FROM person WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PersonStore) GetByEmail(ctx context.Context, email string) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personCols+` FROM person WHERE email = ?`, email)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person by email: %w", err)
	}
	return p, nil
}

// Authenticate returns the person for a matching email and password, or nil
// when either does not match.
func (s *PersonStore) Authenticate(ctx context.Context, email, password string) (*model.Person, error) {
	p, err := s.GetByEmail(ctx, email)
	if err != nil || p == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return p, nil
}

func (s *PersonStore) UpdateName(ctx context.Context, id int64, name string) (*model.Person, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE person SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return s.GetByID(ctx, id)
}

// ChangePassword replaces the password hash when current matches. It reports
// false without error when the person is unknown or current is wrong.
func (s *PersonStore) ChangePassword(ctx context.Context, id int64, current, next string) (bool, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil || p == nil {
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(current)) != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE person SET password_hash = ? WHERE id = ?`, string(hash), id,
	); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}
	return true, nil
}
