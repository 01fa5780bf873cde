package model

import "time"

// HouseholdInvitation is a pending offer for ToPersonID to join HouseholdID.
type HouseholdInvitation struct {
	HouseholdID  int64     `json:"household_id"`
	FromPersonID int64     `json:"from_person_id"`
	ToPersonID   int64     `json:"to_person_id"`
	Created      time.Time `json:"created"`
}

// InvitationView decorates an invitation with names for display.
type InvitationView struct {
	HouseholdInvitation
	HouseholdName string `json:"household_name"`
	FromName      string `json:"from_name"`
	ToName        string `json:"to_name"`
	ToEmail       string `json:"to_email"`
}
