package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestead/internal/auth"
	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/model"
	"github.com/dukerupert/homestead/internal/store"
)

type HouseholdHandler struct {
	households  *store.HouseholdStore
	invitations *invitation.Service
	logger      *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, svc *invitation.Service, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, invitations: svc, logger: logger}
}

func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	households, err := h.households.ListForPerson(r.Context(), auth.PersonID(r.Context()))
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list households")
		return
	}
	if households == nil {
		households = []model.HouseholdMembership{}
	}
	writeJSON(w, http.StatusOK, households)
}

// Create founds a household with the caller as founder.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !validName(req.Name) {
		writeError(w, http.StatusBadRequest, "name must be 1 to 60 characters")
		return
	}

	personID := auth.PersonID(r.Context())
	household, err := h.households.Create(r.Context(), req.Name, personID)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create household")
		return
	}
	h.logger.Info("household created", "household_id", household.ID, "person_id", personID)
	writeJSON(w, http.StatusCreated, household)
}

type householdDetail struct {
	Household   *model.Household       `json:"household"`
	Role        model.Role             `json:"role"`
	Members     []model.MemberProfile  `json:"members"`
	Invitations []model.InvitationView `json:"invitations"`
}

// Get shows a household to its members. Non-members get 404 so household
// ids cannot be probed.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID, ok := pathID(r, "householdID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid household id")
		return
	}

	ctx := r.Context()
	member, err := h.households.GetMember(ctx, householdID, auth.PersonID(ctx))
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}

	household, err := h.households.GetByID(ctx, householdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	members, err := h.households.ListMembers(ctx, householdID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	pending, err := h.invitations.ListPending(ctx, householdID)
	if err != nil {
		h.logger.Error("list pending invitations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if pending == nil {
		pending = []model.InvitationView{}
	}

	writeJSON(w, http.StatusOK, householdDetail{
		Household:   household,
		Role:        member.Role,
		Members:     members,
		Invitations: pending,
	})
}
