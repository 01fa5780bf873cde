package invitation

import (
	"context"

	"github.com/dukerupert/homestead/internal/model"
)

// Queries are the single-statement reads and writes the state machine is
// built from. Implementations run them against the store or an open
// transaction.
type Queries interface {
	IsFounder(ctx context.Context, personID, householdID int64) (bool, error)
	IsMember(ctx context.Context, personID, householdID int64) (bool, error)
	HasInvitation(ctx context.Context, toPersonID, householdID int64) (bool, error)
	FindPersonByEmail(ctx context.Context, email string) (personID int64, found bool, err error)

	// InsertInvitation and InsertMember report false when the row's natural
	// key already exists.
	InsertInvitation(ctx context.Context, inv model.HouseholdInvitation) (bool, error)
	InsertMember(ctx context.Context, m model.HouseholdMember) (bool, error)

	// DeleteInvitationTo removes the invitation addressed to toPersonID
	// regardless of sender and returns who sent it.
	DeleteInvitationTo(ctx context.Context, householdID, toPersonID int64) (fromPersonID int64, found bool, err error)
	DeleteInvitationFrom(ctx context.Context, householdID, fromPersonID, toPersonID int64) (bool, error)
}

// Gateway is the data store as seen by the invitation service.
type Gateway interface {
	// InTx runs fn inside one transaction. It commits when fn returns nil
	// and rolls back otherwise.
	InTx(ctx context.Context, fn func(Queries) error) error

	ListIncoming(ctx context.Context, personID int64) ([]model.InvitationView, error)
	ListForHousehold(ctx context.Context, householdID int64) ([]model.InvitationView, error)
}
