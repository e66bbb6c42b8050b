package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftplan/internal/service"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *service.Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *service.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth; tsnet handles access)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{id}", s.handleGetPlan)
	s.router.Get("/api/v1/plans/{id}/draft", s.handleGetDraft)
	s.router.Get("/api/v1/plans/{id}/suggestions", s.handleListSuggestions)
	s.router.Get("/api/v1/plans/{id}/suggestions/grouped", s.handleGroupedSuggestions)
	s.router.Get("/api/v1/performances", s.handleListPerformances)
	s.router.Get("/api/v1/exercises/{catalogID}/history", s.handleExerciseHistory)

	// Mutating endpoints (API key required)
	auth := s.router.With(APIKeyAuth(s.apiKey))

	auth.Post("/api/v1/plans", s.handleCreatePlan)
	auth.Delete("/api/v1/plans/{id}", s.handleDeletePlan)

	auth.Post("/api/v1/plans/{id}/draft", s.handleOpenDraft)
	auth.Post("/api/v1/plans/{id}/draft/commit", s.handleCommitDraft)
	auth.Delete("/api/v1/plans/{id}/draft", s.handleCancelDraft)
	auth.Patch("/api/v1/plans/{id}/draft", s.handlePatchDraftPlan)
	auth.Post("/api/v1/plans/{id}/draft/prescriptions", s.handleAddDraftPrescription)
	auth.Patch("/api/v1/plans/{id}/draft/prescriptions/{prescID}", s.handlePatchDraftPrescription)
	auth.Delete("/api/v1/plans/{id}/draft/prescriptions/{prescID}", s.handleRemoveDraftPrescription)
	auth.Post("/api/v1/plans/{id}/draft/prescriptions/{prescID}/sets", s.handleAddDraftSet)
	auth.Patch("/api/v1/plans/{id}/draft/sets/{setID}", s.handlePatchDraftSet)
	auth.Delete("/api/v1/plans/{id}/draft/sets/{setID}", s.handleRemoveDraftSet)

	auth.Post("/api/v1/suggestions", s.handleSubmitSuggestions)
	auth.Post("/api/v1/suggestions/{id}/accept", s.handleAcceptSuggestion)
	auth.Post("/api/v1/suggestions/{id}/reject", s.handleRejectSuggestion)
	auth.Post("/api/v1/suggestions/{id}/defer", s.handleDeferSuggestion)
	auth.Post("/api/v1/plans/{id}/suggestions/accept-all", s.handleAcceptAllSuggestions)

	auth.Post("/api/v1/performances", s.handleRecordPerformance)
	auth.Delete("/api/v1/performances/{id}", s.handleDeletePerformance)
}
