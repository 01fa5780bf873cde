package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dukerupert/homestead/internal/model"
)

type SessionStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSessionStore(db *sql.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl}
}

const sessionCols = `id, token, person_id, expires_at, created`

func scanSession(s scanner) (*model.Session, error) {
	var sess model.Session
	err := s.Scan(&sess.ID, &sess.Token, &sess.PersonID, &sess.ExpiresAt, &sess.Created)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *SessionStore) Create(ctx context.Context, personID int64) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	created := now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO session (token, person_id, expires_at, created) VALUES (?, ?, ?, ?)`,
		token, personID, created.Add(s.ttl), created,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM session WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetByToken returns the unexpired session for token, or nil.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM session WHERE token = ? AND expires_at > ?`,
		token, now(),
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteOthers removes every session of personID except keepID.
func (s *SessionStore) DeleteOthers(ctx context.Context, personID, keepID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session WHERE person_id = ? AND id != ?`, personID, keepID,
	)
	if err != nil {
		return fmt.Errorf("delete other sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at <= ?`, now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
