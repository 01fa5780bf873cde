package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dukerupert/homestead/internal/config"
	"github.com/dukerupert/homestead/internal/email"
	"github.com/dukerupert/homestead/internal/handler"
	"github.com/dukerupert/homestead/internal/invitation"
	"github.com/dukerupert/homestead/internal/middleware"
	"github.com/dukerupert/homestead/internal/notify"
	"github.com/dukerupert/homestead/internal/store"
	ws "github.com/dukerupert/homestead/internal/websocket"
)

const healthTimeout = 2 * time.Second

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	hub         *ws.Hub
	mailer      *notify.Mailer
	accountH    *handler.AccountHandler
	householdH  *handler.HouseholdHandler
	invitationH *handler.InvitationHandler
	sessions    *store.SessionStore
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	people := store.NewPersonStore(db)
	households := store.NewHouseholdStore(db)
	sessions := store.NewSessionStore(db, cfg.Session.TTL)

	notifiers := invitation.Notifiers{hub}
	var mailer *notify.Mailer
	if cfg.EmailEnabled() {
		client := email.NewClient(cfg.Email.ServerToken, cfg.Email.From, cfg.Email.BaseURL)
		mailer = notify.NewMailer(client, households, people, logger.With("component", "mailer"))
		notifiers = append(notifiers, mailer)
	}

	svc := invitation.NewService(store.NewInvitationStore(db),
		invitation.WithNotifier(notifiers),
		invitation.WithLogger(logger.With("component", "invitation")),
	)

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		mailer:      mailer,
		accountH:    handler.NewAccountHandler(people, sessions, cfg.Session.SecureCookie, logger.With("component", "account")),
		householdH:  handler.NewHouseholdHandler(households, svc, logger.With("component", "household")),
		invitationH: handler.NewInvitationHandler(svc, logger.With("component", "invitation_handler")),
		sessions:    sessions,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))
	r.Use(chimw.Recoverer)

	loginLimit := middleware.RateLimit(s.rateLimiter, middleware.ByIP("login"), middleware.Limit{
		Requests: s.cfg.RateLimit.Login.Requests,
		Window:   s.cfg.RateLimit.Login.Window,
	})
	inviteLimit := middleware.RateLimit(s.rateLimiter, middleware.ByPerson("invite"), middleware.Limit{
		Requests: s.cfg.RateLimit.Invite.Requests,
		Window:   s.cfg.RateLimit.Invite.Window,
	})

	// Public routes
	r.Get("/health", s.healthHandler)
	r.With(loginLimit).Post("/register", s.accountH.Register)
	r.With(loginLimit).Post("/login", s.accountH.Login)
	r.Post("/logout", s.accountH.Logout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.sessions, s.logger.With("component", "auth")))

		r.Get("/ws", ws.HandleWebSocket(s.hub, s.cfg.Server.Origins(), s.logger.With("component", "websocket")))

		r.Route("/api", func(r chi.Router) {
			r.Get("/account", s.accountH.Get)
			r.Put("/account", s.accountH.Update)
			r.Post("/account/password", s.accountH.ChangePassword)

			r.Get("/households", s.householdH.List)
			r.Post("/households", s.householdH.Create)
			r.Get("/invitations", s.invitationH.ListIncoming)

			r.Route("/households/{householdID}", func(r chi.Router) {
				r.Get("/", s.householdH.Get)
				r.With(inviteLimit).Post("/invitations", s.invitationH.Create)
				r.Post("/invitations/accept", s.invitationH.Accept)
				r.Post("/invitations/decline", s.invitationH.Decline)
				r.Post("/invitations/{personID}/withdraw", s.invitationH.Withdraw)
				r.Delete("/invitations/{personID}", s.invitationH.Cancel)
			})
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// Cleanup purges expired sessions and rate-limit windows once.
func (s *Server) Cleanup(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("session cleanup", "error", err)
	} else if n > 0 {
		s.logger.Info("cleaned up expired sessions", "count", n)
	}
	if removed := s.rateLimiter.Cleanup(); removed > 0 {
		s.logger.Debug("cleaned up rate limit windows", "count", removed)
	}
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close waits for background notification work to finish.
func (s *Server) Close() {
	if s.mailer != nil {
		s.mailer.Wait()
	}
}
