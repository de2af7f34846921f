package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/calendar"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

func (s *Server) handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
	chapterID := domain.ChapterID(chi.URLParam(r, "chapterID"))

	feed, err := s.Calendar.Feed(r.Context(), chapterID)
	if err != nil {
		if errors.Is(err, calendar.ErrChapterNotFound) {
			writeError(w, r, http.StatusNotFound, "NOT_FOUND", "chapter not found", nil)
			return
		}
		writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
