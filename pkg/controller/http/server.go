package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/secmon-lab/argus/pkg/usecase"
)

const (
	DefaultRateLimit  = 120
	DefaultRateWindow = time.Minute
)

// ConnectionCounter reports the number of live push connections
type ConnectionCounter interface {
	ConnectedCount() int
}

type Server struct {
	router     *chi.Mux
	uc         *usecase.UseCases
	authUC     AuthUseCase
	wsHandler  http.Handler
	counter    ConnectionCounter
	rateLimit  int
	rateWindow time.Duration
	validate   *validator.Validate
}

type Options func(*Server)

// WithAuth overrides the credential verifier of the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithWebSocket mounts the push channel at /ws
func WithWebSocket(handler http.Handler) Options {
	return func(s *Server) {
		s.wsHandler = handler
	}
}

// WithConnectionCounter adds the live connection count to /health
func WithConnectionCounter(counter ConnectionCounter) Options {
	return func(s *Server) {
		s.counter = counter
	}
}

// WithRateLimit limits mutations per principal. A zero limit disables it.
func WithRateLimit(limit int, window time.Duration) Options {
	return func(s *Server) {
		s.rateLimit = limit
		s.rateWindow = window
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		uc:         uc,
		authUC:     uc.Auth,
		rateLimit:  DefaultRateLimit,
		rateWindow: DefaultRateWindow,
		validate:   newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	// The push channel authenticates in-band with an authenticate frame
	if s.wsHandler != nil {
		r.Get("/ws", s.wsHandler.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/cases", s.listCases)
		r.Get("/cases/available", s.listAvailableCases)
		r.Get("/cases/stats", s.caseStats)
		r.Get("/cases/{id}", s.getCase)
		r.Get("/transactions", s.listTransactions)
		r.Get("/alerts", s.listAlerts)
		r.Get("/rules", s.listRules)
		r.Get("/logs", s.listLogs)
		r.Get("/logs/export", s.exportLogs)
		r.Get("/announcements", s.listAnnouncements)
		r.Get("/announcements/all", s.listAllAnnouncements)

		r.Group(func(r chi.Router) {
			if s.rateLimit > 0 {
				r.Use(rateLimiter(s.rateLimit, s.rateWindow))
			}

			r.Post("/cases/from-transaction", s.createCaseFromTransaction)
			r.Post("/cases/from-alert", s.createCaseFromAlert)
			r.Put("/cases/{id}/assign", s.assignInvestigator)
			r.Put("/cases/{id}/assign-self", s.assignToSelf)
			r.Put("/cases/{id}/status", s.updateStatus)
			r.Post("/cases/{id}/comment", s.addComment)
			r.Post("/cases/{id}/evidence", s.uploadEvidence)
			r.Put("/cases/{id}/close", s.closeCase)
			r.Delete("/cases/{id}", s.purgeCase)

			r.Post("/transactions", s.createTransaction)
			r.Delete("/transactions/{id}", s.deleteTransaction)
			r.Put("/alerts/{id}/resolve", s.resolveAlert)
			r.Post("/system-messages", s.sendSystemMessage)

			r.Post("/rules", s.createRule)
			r.Put("/rules/{id}", s.updateRule)
			r.Delete("/rules/{id}", s.deleteRule)

			r.Post("/announcements", s.createAnnouncement)
			r.Put("/announcements/{id}", s.updateAnnouncement)
			r.Delete("/announcements/{id}", s.deleteAnnouncement)
			r.Put("/announcements/{id}/read", s.markAnnouncementRead)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.counter != nil {
		resp.Connections = s.counter.ConnectedCount()
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}
