package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestead/internal/auth"
	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/model"
)

// StatusFor maps an invitation outcome to its HTTP status.
func StatusFor(out invitation.Outcome) int {
	switch out {
	case invitation.Created:
		return http.StatusCreated
	case invitation.Accepted, invitation.Declined, invitation.Cancelled:
		return http.StatusOK
	case invitation.InvalidInput:
		return http.StatusBadRequest
	case invitation.NotFounder, invitation.NotMember:
		return http.StatusForbidden
	case invitation.SelfInvite:
		return http.StatusUnprocessableEntity
	case invitation.PersonNotFound, invitation.InvitationNotFound:
		return http.StatusNotFound
	case invitation.AlreadyInvited, invitation.AlreadyMember:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type outcomeResponse struct {
	Outcome invitation.Outcome `json:"outcome"`
}

func writeOutcome(w http.ResponseWriter, out invitation.Outcome) {
	writeJSON(w, StatusFor(out), outcomeResponse{Outcome: out})
}

type InvitationHandler struct {
	svc    *invitation.Service
	logger *slog.Logger
}

func NewInvitationHandler(svc *invitation.Service, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{svc: svc, logger: logger}
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, ok := pathID(r, "householdID")
	if !ok {
		writeOutcome(w, invitation.InvalidInput)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeOutcome(w, invitation.InvalidInput)
		return
	}

	writeOutcome(w, h.svc.Create(r.Context(), invitation.CreateRequest{
		ActingPersonID: auth.PersonID(r.Context()),
		HouseholdID:    householdID,
		InviteeEmail:   strings.TrimSpace(req.Email),
	}))
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.Accept)
}

func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.svc.Decline)
}

// Withdraw lets the sender take back an invitation.
func (h *InvitationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, h.svc.CancelBySender)
}

// Cancel lets the household founder remove any pending invitation.
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.cancel(w, r, h.svc.CancelByFounder)
}

func (h *InvitationHandler) respond(w http.ResponseWriter, r *http.Request, op func(context.Context, invitation.ResponseRequest) invitation.Outcome) {
	householdID, ok := pathID(r, "householdID")
	if !ok {
		writeOutcome(w, invitation.InvalidInput)
		return
	}
	writeOutcome(w, op(r.Context(), invitation.ResponseRequest{
		ActingPersonID: auth.PersonID(r.Context()),
		HouseholdID:    householdID,
	}))
}

func (h *InvitationHandler) cancel(w http.ResponseWriter, r *http.Request, op func(context.Context, invitation.CancelRequest) invitation.Outcome) {
	householdID, ok := pathID(r, "householdID")
	if !ok {
		writeOutcome(w, invitation.InvalidInput)
		return
	}
	toPersonID, ok := pathID(r, "personID")
	if !ok {
		writeOutcome(w, invitation.InvalidInput)
		return
	}
	writeOutcome(w, op(r.Context(), invitation.CancelRequest{
		ActingPersonID: auth.PersonID(r.Context()),
		HouseholdID:    householdID,
		ToPersonID:     toPersonID,
	}))
}

// ListIncoming returns the invitations waiting for the caller's answer.
func (h *InvitationHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListIncoming(r.Context(), auth.PersonID(r.Context()))
	if err != nil {
		h.logger.Error("list incoming invitations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if views == nil {
		views = []model.InvitationView{}
	}
	writeJSON(w, http.StatusOK, views)
}
