package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/cards"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

type controlRowBody struct {
	Name       string    `json:"name"`
	DistanceKm float64   `json:"distanceKm"`
	OpensAt    time.Time `json:"opensAt"`
	ClosesAt   time.Time `json:"closesAt"`
}

type cardSlotBody struct {
	RiderName string `json:"riderName,omitempty"`
	Blank     bool   `json:"blank"`
}

type cardSheetBody struct {
	Front []cardSlotBody     `json:"front"`
	Back  [][]controlRowBody `json:"back"`
}

type cardSetResponse struct {
	EventID     string          `json:"eventId"`
	EventName   string          `json:"eventName"`
	EventType   string          `json:"eventType"`
	DistanceKm  int             `json:"distanceKm"`
	StartAt     time.Time       `json:"startAt"`
	AllowedTime string          `json:"allowedTime"`
	Sheets      []cardSheetBody `json:"sheets"`
}

func (s *Server) handleControlCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := domain.EventID(chi.URLParam(r, "eventID"))

	ev, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "NOT_FOUND", "event not found", nil)
			return
		}
		writeAppError(w, r, err)
		return
	}

	loc := time.UTC
	if ch, err := s.Chapters.GetByID(ctx, ev.ChapterID); err == nil {
		loc = ch.Location()
	}

	var controls []domain.Control
	if ev.RouteID != nil {
		rt, err := s.Routes.GetByID(ctx, *ev.RouteID)
		if err != nil && !errors.Is(err, routerepo.ErrNotFound) {
			writeAppError(w, r, err)
			return
		}
		controls = rt.Controls
	}

	riderNames, err := s.registeredRiderNames(ctx, eventID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	summary := domain.EventSummary{Date: ev.Date, StartMinutes: ev.StartMinutes}
	startLocation := ""
	if ev.StartLocation != nil {
		startLocation = *ev.StartLocation
	}

	set, err := cards.Generate(ctx, cards.Input{
		EventName:       ev.Name,
		EventType:       ev.Type,
		DistanceKm:      ev.DistanceKm,
		StartAt:         summary.StartAt(loc),
		StartLocation:   startLocation,
		Controls:        controls,
		RiderNames:      riderNames,
		ExtraBlankCards: s.ExtraBlankCards,
	})
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, cardSetResponse{
		EventID:     string(ev.ID),
		EventName:   set.EventName,
		EventType:   string(set.EventType),
		DistanceKm:  set.DistanceKm,
		StartAt:     set.StartAt,
		AllowedTime: fmt.Sprintf("%d:%02d", set.AllowedHours, set.AllowedMinutes),
		Sheets:      sheetsToBody(set.Sheets),
	})
}

func (s *Server) registeredRiderNames(ctx context.Context, eventID domain.EventID) ([]string, error) {
	regs, err := s.Registrations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(regs))
	for _, reg := range regs {
		rd, err := s.RiderRepo.GetByID(ctx, reg.RiderID)
		if err != nil {
			return nil, err
		}
		names = append(names, domain.NormalizeHumanName(rd.FirstName+" "+rd.LastName))
	}
	return names, nil
}

func sheetsToBody(sheets []cards.Sheet) []cardSheetBody {
	out := make([]cardSheetBody, 0, len(sheets))
	for _, sh := range sheets {
		body := cardSheetBody{
			Front: []cardSlotBody{
				{RiderName: sh.Front[0].RiderName, Blank: sh.Front[0].Blank},
				{RiderName: sh.Front[1].RiderName, Blank: sh.Front[1].Blank},
			},
		}
		for _, col := range sh.Back {
			rows := make([]controlRowBody, 0, len(col))
			for _, row := range col {
				rows = append(rows, controlRowBody{
					Name:       row.Name,
					DistanceKm: row.DistanceKm,
					OpensAt:    row.OpensAt,
					ClosesAt:   row.ClosesAt,
				})
			}
			body.Back = append(body.Back, rows)
		}
		out = append(out, body)
	}
	return out
}
