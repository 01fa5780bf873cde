// Package invitation implements the household invitation workflow: who may
// invite whom, and how a pending invitation is accepted, declined or
// cancelled. Every operation returns exactly one Outcome.
package invitation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukerupert/homestead/internal/model"
)

var tracer = otel.Tracer("github.com/dukerupert/homestead/internal/invitation")

// errRollback aborts a transaction whose outcome is not a success.
var errRollback = errors.New("invitation: rollback")

type CreateRequest struct {
	ActingPersonID int64
	HouseholdID    int64
	InviteeEmail   string
}

// ResponseRequest is the invitee's accept or decline.
type ResponseRequest struct {
	ActingPersonID int64
	HouseholdID    int64
}

type CancelRequest struct {
	ActingPersonID int64
	HouseholdID    int64
	ToPersonID     int64
}

type Service struct {
	gw       Gateway
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(gw Gateway, opts ...Option) *Service {
	s := &Service{
		gw:       gw,
		notifier: nopNotifier{},
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create offers the person registered under req.InviteeEmail membership of
// the household. Only the founder may invite.
func (s *Service) Create(ctx context.Context, req CreateRequest) Outcome {
	ctx, op := s.start(ctx, "create", req.ActingPersonID, req.HouseholdID)
	defer op.span.End()

	if !req.valid() {
		return s.finish(ctx, op, InvalidInput, nil)
	}

	var inv model.HouseholdInvitation
	out, err := s.run(ctx, func(q Queries) (Outcome, error) {
		founder, err := q.IsFounder(ctx, req.ActingPersonID, req.HouseholdID)
		if err != nil {
			return 0, err
		}
		if !founder {
			return NotFounder, nil
		}

		inviteeID, found, err := q.FindPersonByEmail(ctx, req.InviteeEmail)
		if err != nil {
			return 0, err
		}
		if !found {
			return PersonNotFound, nil
		}
		if inviteeID == req.ActingPersonID {
			return SelfInvite, nil
		}

		pending, err := q.HasInvitation(ctx, inviteeID, req.HouseholdID)
		if err != nil {
			return 0, err
		}
		if pending {
			return AlreadyInvited, nil
		}
		member, err := q.IsMember(ctx, inviteeID, req.HouseholdID)
		if err != nil {
			return 0, err
		}
		if member {
			return AlreadyMember, nil
		}

		inv = model.HouseholdInvitation{
			HouseholdID:  req.HouseholdID,
			FromPersonID: req.ActingPersonID,
			ToPersonID:   inviteeID,
			Created:      s.now(),
		}
		inserted, err := q.InsertInvitation(ctx, inv)
		if err != nil {
			return 0, err
		}
		if !inserted {
			return AlreadyInvited, nil
		}
		return Created, nil
	})

	out = s.finish(ctx, op, out, err, slog.Int64("to_person_id", inv.ToPersonID))
	if out == Created {
		s.notifier.Notify(ctx, Event{
			Type:         EventCreated,
			HouseholdID:  inv.HouseholdID,
			FromPersonID: inv.FromPersonID,
			ToPersonID:   inv.ToPersonID,
			ActorID:      req.ActingPersonID,
			InviteeEmail: req.InviteeEmail,
			At:           inv.Created,
		})
	}
	return out
}

// Accept consumes the invitation addressed to the acting person and makes
// them a member. Both writes commit together or not at all.
func (s *Service) Accept(ctx context.Context, req ResponseRequest) Outcome {
	ctx, op := s.start(ctx, "accept", req.ActingPersonID, req.HouseholdID)
	defer op.span.End()

	if !req.valid() {
		return s.finish(ctx, op, InvalidInput, nil)
	}

	var fromID int64
	at := s.now()
	out, err := s.run(ctx, func(q Queries) (Outcome, error) {
		from, found, err := q.DeleteInvitationTo(ctx, req.HouseholdID, req.ActingPersonID)
		if err != nil {
			return 0, err
		}
		if !found {
			return InvitationNotFound, nil
		}
		fromID = from

		inserted, err := q.InsertMember(ctx, model.HouseholdMember{
			HouseholdID: req.HouseholdID,
			PersonID:    req.ActingPersonID,
			Role:        model.RoleMember,
			Created:     at,
		})
		if err != nil {
			return 0, err
		}
		if !inserted {
			return AlreadyMember, nil
		}
		return Accepted, nil
	})

	out = s.finish(ctx, op, out, err)
	if out == Accepted {
		s.notifier.Notify(ctx, Event{
			Type:         EventAccepted,
			HouseholdID:  req.HouseholdID,
			FromPersonID: fromID,
			ToPersonID:   req.ActingPersonID,
			ActorID:      req.ActingPersonID,
			At:           at,
		})
	}
	return out
}

// Decline discards the invitation addressed to the acting person.
func (s *Service) Decline(ctx context.Context, req ResponseRequest) Outcome {
	ctx, op := s.start(ctx, "decline", req.ActingPersonID, req.HouseholdID)
	defer op.span.End()

	if !req.valid() {
		return s.finish(ctx, op, InvalidInput, nil)
	}

	var fromID int64
	out, err := s.run(ctx, func(q Queries) (Outcome, error) {
		from, found, err := q.DeleteInvitationTo(ctx, req.HouseholdID, req.ActingPersonID)
		if err != nil {
			return 0, err
		}
		if !found {
			return InvitationNotFound, nil
		}
		fromID = from
		return Declined, nil
	})

	out = s.finish(ctx, op, out, err)
	if out == Declined {
		s.notifier.Notify(ctx, Event{
			Type:         EventDeclined,
			HouseholdID:  req.HouseholdID,
			FromPersonID: fromID,
			ToPersonID:   req.ActingPersonID,
			ActorID:      req.ActingPersonID,
			At:           s.now(),
		})
	}
	return out
}

// CancelBySender withdraws an invitation the acting person sent.
func (s *Service) CancelBySender(ctx context.Context, req CancelRequest) Outcome {
	ctx, op := s.start(ctx, "cancel_by_sender", req.ActingPersonID, req.HouseholdID)
	defer op.span.End()

	if !req.valid() {
		return s.finish(ctx, op, InvalidInput, nil)
	}

	out, err := s.run(ctx, func(q Queries) (Outcome, error) {
		found, err := q.DeleteInvitationFrom(ctx, req.HouseholdID, req.ActingPersonID, req.ToPersonID)
		if err != nil {
			return 0, err
		}
		if !found {
			return InvitationNotFound, nil
		}
		return Cancelled, nil
	})

	out = s.finish(ctx, op, out, err, slog.Int64("to_person_id", req.ToPersonID))
	if out == Cancelled {
		s.notifier.Notify(ctx, Event{
			Type:         EventCancelled,
			HouseholdID:  req.HouseholdID,
			FromPersonID: req.ActingPersonID,
			ToPersonID:   req.ToPersonID,
			ActorID:      req.ActingPersonID,
			At:           s.now(),
		})
	}
	return out
}

// CancelByFounder lets the household founder cancel any pending invitation
// to the household, whoever sent it.
func (s *Service) CancelByFounder(ctx context.Context, req CancelRequest) Outcome {
	ctx, op := s.start(ctx, "cancel_by_founder", req.ActingPersonID, req.HouseholdID)
	defer op.span.End()

	if !req.valid() {
		return s.finish(ctx, op, InvalidInput, nil)
	}

	var fromID int64
	out, err := s.run(ctx, func(q Queries) (Outcome, error) {
		member, err := q.IsMember(ctx, req.ActingPersonID, req.HouseholdID)
		if err != nil {
			return 0, err
		}
		if !member {
			return NotMember, nil
		}
		founder, err := q.IsFounder(ctx, req.ActingPersonID, req.HouseholdID)
		if err != nil {
			return 0, err
		}
		if !founder {
			return NotFounder, nil
		}

		from, found, err := q.DeleteInvitationTo(ctx, req.HouseholdID, req.ToPersonID)
		if err != nil {
			return 0, err
		}
		if !found {
			return InvitationNotFound, nil
		}
		fromID = from
		return Cancelled, nil
	})

	out = s.finish(ctx, op, out, err, slog.Int64("to_person_id", req.ToPersonID))
	if out == Cancelled {
		s.notifier.Notify(ctx, Event{
			Type:         EventCancelled,
			HouseholdID:  req.HouseholdID,
			FromPersonID: fromID,
			ToPersonID:   req.ToPersonID,
			ActorID:      req.ActingPersonID,
			At:           s.now(),
		})
	}
	return out
}

// ListIncoming returns the pending invitations addressed to personID.
func (s *Service) ListIncoming(ctx context.Context, personID int64) ([]model.InvitationView, error) {
	return s.gw.ListIncoming(ctx, personID)
}

// ListPending returns the household's pending invitations. Callers check
// membership before exposing them.
func (s *Service) ListPending(ctx context.Context, householdID int64) ([]model.InvitationView, error) {
	return s.gw.ListForHousehold(ctx, householdID)
}

// run executes fn in a transaction. Unsuccessful outcomes roll back so a
// refused operation never leaves a partial write behind.
func (s *Service) run(ctx context.Context, fn func(Queries) (Outcome, error)) (Outcome, error) {
	var out Outcome
	err := s.gw.InTx(ctx, func(q Queries) error {
		o, err := fn(q)
		if err != nil {
			return err
		}
		out = o
		if !o.OK() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return out, nil
	}
	return out, err
}

// call carries the identity of one operation through tracing and logging.
type call struct {
	name        string
	personID    int64
	householdID int64
	span        trace.Span
}

func (s *Service) start(ctx context.Context, name string, actingPersonID, householdID int64) (context.Context, *call) {
	ctx, span := tracer.Start(ctx, "invitation."+name, trace.WithAttributes(
		attribute.Int64("person.id", actingPersonID),
		attribute.Int64("household.id", householdID),
	))
	return ctx, &call{name: name, personID: actingPersonID, householdID: householdID, span: span}
}

// finish converts a store failure into StoreError, then records the outcome
// on the span and in the log.
func (s *Service) finish(ctx context.Context, c *call, out Outcome, err error, attrs ...slog.Attr) Outcome {
	if err != nil {
		out = StoreError
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, "store failure")
	}
	c.span.SetAttributes(attribute.String("invitation.outcome", out.String()))

	attrs = append(attrs,
		slog.String("operation", c.name),
		slog.Int64("person_id", c.personID),
		slog.Int64("household_id", c.householdID),
		slog.String("outcome", out.String()),
	)

	switch out.Kind() {
	case KindStore:
		attrs = append(attrs, slog.Any("error", err))
		s.logger.LogAttrs(ctx, slog.LevelError, "invitation store failure", attrs...)
	case KindAuthorization:
		s.logger.LogAttrs(ctx, slog.LevelWarn, "invitation denied", attrs...)
	case KindSuccess:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "invitation", attrs...)
	default:
		s.logger.LogAttrs(ctx, slog.LevelDebug, "invitation refused", attrs...)
	}
	return out
}
