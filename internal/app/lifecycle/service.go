package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/acp"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/batch"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/clock"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

// ResultCollector is the slice of the results service the sweep needs.
type ResultCollector interface {
	CollectForEvent(ctx context.Context, ev eventrepo.Event) (results.CollectionReport, error)
}

// SweepReport aggregates one periodic run over all scheduled events.
type SweepReport struct {
	Checked         int
	Completed       int
	CompletedEvents []domain.EventID
	Errors          []string
}

type Service struct {
	events    eventrepo.Repository
	chapters  chapterrepo.Repository
	collector ResultCollector
	clk       clock.Clock

	// sweepMu keeps overlapping trigger invocations from double-creating
	// pending results.
	sweepMu sync.Mutex
}

func NewService(events eventrepo.Repository, chapters chapterrepo.Repository, collector ResultCollector, clk clock.Clock) *Service {
	return &Service{
		events:    events,
		chapters:  chapters,
		collector: collector,
		clk:       clk,
	}
}

// ClosingTime resolves the instant an event's overall time limit expires:
// event date + start time (in the chapter's zone) + the ACP limit.
func (s *Service) ClosingTime(ctx context.Context, ev eventrepo.Event) (time.Time, error) {
	limit, err := acp.CloseHours(ev.Type, float64(ev.DistanceKm))
	if err != nil {
		return time.Time{}, err
	}
	loc := time.UTC
	if ch, err := s.chapters.GetByID(ctx, ev.ChapterID); err == nil {
		loc = ch.Location()
	}
	start := time.Date(ev.Date.Year(), ev.Date.Month(), ev.Date.Day(), 0, ev.StartMinutes, 0, 0, loc)
	return start.Add(time.Duration(limit * float64(time.Hour))), nil
}

// CompleteExpiredEvents is the periodic sweep: every scheduled event whose
// closing time has passed transitions to completed, and result collection is
// invoked for it. Collection failures never roll the transition back, and
// one event's failure never blocks the rest of the batch.
func (s *Service) CompleteExpiredEvents(ctx context.Context) (SweepReport, error) {
	if !s.sweepMu.TryLock() {
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	var report SweepReport

	scheduled, err := s.events.ListByStatus(ctx, domain.EventStatusScheduled)
	if err != nil {
		return report, fmt.Errorf("list scheduled events: %w", err)
	}
	report.Checked = len(scheduled)
	now := s.clk.Now()

	res := batch.Map(scheduled, func(ev eventrepo.Event) error {
		closing, err := s.ClosingTime(ctx, ev)
		if err != nil {
			return fmt.Errorf("event %s: closing time: %w", ev.ID, err)
		}
		if !now.After(closing) {
			return nil
		}
		if err := s.completeOne(ctx, ev, &report); err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
		return nil
	})
	report.Errors = append(report.Errors, res.Errors()...)
	return report, nil
}

func (s *Service) completeOne(ctx context.Context, ev eventrepo.Event, report *SweepReport) error {
	ev.Status = domain.EventStatusCompleted
	ev.UpdatedAt = s.clk.Now()
	if err := s.events.Save(ctx, ev); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	report.Completed++
	report.CompletedEvents = append(report.CompletedEvents, ev.ID)

	// Best-effort side effect: the status change stands even if collection
	// partially (or wholly) fails.
	cr, err := s.collector.CollectForEvent(ctx, ev)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("event %s: collect results: %v", ev.ID, err))
		return nil
	}
	report.Errors = append(report.Errors, cr.Errors...)
	return nil
}

// CancelEvent is the manual admin action scheduled -> cancelled.
func (s *Service) CancelEvent(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	return s.transition(ctx, id, domain.EventStatusCancelled)
}

// SubmitToACP is the manual admin action completed -> submitted, taken after
// the ACP paperwork is filed. It freezes all result mutation.
func (s *Service) SubmitToACP(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	return s.transition(ctx, id, domain.EventStatusSubmitted)
}

func (s *Service) transition(ctx context.Context, id domain.EventID, to domain.EventStatus) (eventrepo.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "event not found"}
		}
		return eventrepo.Event{}, err
	}
	if !domain.CanTransition(ev.Status, to) {
		return eventrepo.Event{}, &Error{
			Status:  409,
			Code:    "INVALID_STATUS",
			Message: fmt.Sprintf("cannot transition event from %s to %s", ev.Status, to),
		}
	}
	ev.Status = to
	ev.UpdatedAt = s.clk.Now()
	if err := s.events.Save(ctx, ev); err != nil {
		return eventrepo.Event{}, err
	}
	return ev, nil
}
