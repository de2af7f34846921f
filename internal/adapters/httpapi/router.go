package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/internal/tasks/complete-events", s.handleCompleteEvents)

	r.Route("/results/submit/{token}", func(r chi.Router) {
		r.Get("/", s.handleGetSubmission)
		r.Post("/", s.handleSubmitResult)
		r.Post("/files", s.handleAttachFile)
		r.Delete("/files/{fileType}", s.handleDetachFile)
	})

	r.Get("/chapters/{chapterID}/calendar.ics", s.handleCalendarFeed)
	r.Get("/events/{eventID}/control-cards", s.handleControlCards)
	r.Post("/events/{eventID}/riders/suggest", s.handleSuggestRiders)

	return r
}
