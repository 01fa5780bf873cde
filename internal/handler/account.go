package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/homestead/internal/auth"
	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/store"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxNameLength     = 60
)

type AccountHandler struct {
	people       *store.PersonStore
	sessions     *store.SessionStore
	secureCookie bool
	logger       *slog.Logger
}

func NewAccountHandler(ps *store.PersonStore, ss *store.SessionStore, secureCookie bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		people:       ps,
		sessions:     ss,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func validPassword(p string) bool {
	return utf8.RuneCountInString(p) >= minPasswordLength && len(p) <= maxPasswordBytes
}

func validName(n string) bool {
	c := utf8.RuneCountInString(n)
	return c >= 1 && c <= maxNameLength
}

// startSession creates a session for personID and sets its cookie.
func (h *AccountHandler) startSession(w http.ResponseWriter, r *http.Request, personID int64) bool {
	sess, err := h.sessions.Create(r.Context(), personID)
	if err != nil {
		h.logger.Error("create session", "person_id", personID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	auth.SetSessionCookie(w, sess.Token, sess.ExpiresAt, h.secureCookie)
	return true
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if !invitation.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if !validName(req.Name) {
		writeError(w, http.StatusBadRequest, "name must be 1 to 60 characters")
		return
	}
	if !validPassword(req.Password) {
		writeError(w, http.StatusBadRequest, "password must be 8 to 72 characters")
		return
	}

	person, err := h.people.Create(r.Context(), req.Email, req.Name, req.Password)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}
	if err != nil {
		h.logger.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !h.startSession(w, r, person.ID) {
		return
	}
	h.logger.Info("person registered", "person_id", person.ID)
	writeJSON(w, http.StatusCreated, person)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	person, err := h.people.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if person == nil {
		// Same answer for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !h.startSession(w, r, person.ID) {
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionToken(r); token != "" {
		sess, err := h.sessions.GetByToken(r.Context(), token)
		if err != nil {
			h.logger.Error("logout lookup", "error", err)
		} else if sess != nil {
			if err := h.sessions.Delete(r.Context(), sess.ID); err != nil {
				h.logger.Error("logout delete", "error", err)
			}
		}
	}

	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	person, err := h.people.GetByID(r.Context(), auth.PersonID(r.Context()))
	if err != nil {
		h.logger.Error("get account", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if person == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	person, err := h.people.UpdateName(r.Context(), auth.PersonID(r.Context()), req.Name)
	if err != nil {
		h.logger.Error("update account", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// ChangePassword replaces the password and signs out every other session.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validPassword(req.NewPassword) {
		writeError(w, http.StatusBadRequest, "password must be 8 to 72 characters")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	ok, err := h.people.ChangePassword(r.Context(), ac.PersonID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.logger.Error("change password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "current password is incorrect")
		return
	}

	if err := h.sessions.DeleteOthers(r.Context(), ac.PersonID, ac.SessionID); err != nil {
		h.logger.Error("revoke sessions", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
