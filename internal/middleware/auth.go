package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestead/internal/auth"
	"github.com/dukerupert/homestead/internal/store"
)

// RequireAuth resolves the session cookie and populates AuthContext.
// Requests without a live session get a 401 JSON body.
func RequireAuth(sessions *store.SessionStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.SessionToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			sess, err := sessions.GetByToken(r.Context(), token)
			if err != nil {
				logger.Error("session lookup", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if sess == nil {
				auth.ClearSessionCookie(w)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{
				PersonID:  sess.PersonID,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
