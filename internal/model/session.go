package model

import "time"

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	PersonID  int64     `json:"person_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Created   time.Time `json:"created"`
}
