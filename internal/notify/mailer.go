// Package notify delivers invitation events outside the process.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/homestead/internal/email"
	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/model"
)

const sendTimeout = 15 * time.Second

// Sender is the part of the e-mail client the mailer needs.
type Sender interface {
	SendInvitation(ctx context.Context, inv email.Invitation) error
}

type HouseholdLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Household, error)
}

type PersonLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Person, error)
}

// Mailer e-mails the invitee when an invitation is created. Sends run in
// the background so a slow mail API never delays the caller.
type Mailer struct {
	sender     Sender
	households HouseholdLookup
	people     PersonLookup
	logger     *slog.Logger
	wg         sync.WaitGroup
}

var _ invitation.Notifier = (*Mailer)(nil)

func NewMailer(sender Sender, households HouseholdLookup, people PersonLookup, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:     sender,
		households: households,
		people:     people,
		logger:     logger,
	}
}

func (m *Mailer) Notify(ctx context.Context, ev invitation.Event) {
	if ev.Type != invitation.EventCreated || ev.InviteeEmail == "" {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()

		if err := m.send(ctx, ev); err != nil {
			m.logger.ErrorContext(ctx, "send invitation email",
				"household_id", ev.HouseholdID,
				"to_person_id", ev.ToPersonID,
				"error", err,
			)
			return
		}
		m.logger.DebugContext(ctx, "invitation email sent",
			"household_id", ev.HouseholdID,
			"to_person_id", ev.ToPersonID,
		)
	}()
}

func (m *Mailer) send(ctx context.Context, ev invitation.Event) error {
	household, err := m.households.GetByID(ctx, ev.HouseholdID)
	if err != nil {
		return fmt.Errorf("get household: %w", err)
	}
	if household == nil {
		return errors.New("household no longer exists")
	}
	inviter, err := m.people.GetByID(ctx, ev.FromPersonID)
	if err != nil {
		return fmt.Errorf("get inviter: %w", err)
	}
	if inviter == nil {
		return errors.New("inviter no longer exists")
	}

	return m.sender.SendInvitation(ctx, email.Invitation{
		To:            ev.InviteeEmail,
		HouseholdName: household.Name,
		InviterName:   inviter.Name,
	})
}

// Wait blocks until in-flight sends finish.
func (m *Mailer) Wait() {
	m.wg.Wait()
}
