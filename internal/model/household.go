package model

import "time"

// Role is a person's standing within a household.
type Role string

const (
	RoleFounder Role = "founder"
	RoleMember  Role = "member"
)

type Household struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

type HouseholdMember struct {
	HouseholdID int64     `json:"household_id"`
	PersonID    int64     `json:"person_id"`
	Role        Role      `json:"role"`
	Created     time.Time `json:"created"`
}

// HouseholdMembership is a household as seen by one of its members.
type HouseholdMembership struct {
	Household
	Role Role `json:"role"`
}

// MemberProfile joins a membership with the member's display fields.
type MemberProfile struct {
	HouseholdMember
	Name  string `json:"name"`
	Email string `json:"email"`
}
