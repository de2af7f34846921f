package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memchapters "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/chapterrepo"
	memclock "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/clock"
	memevents "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

// recordingCollector records which events were collected.
type recordingCollector struct {
	mu        sync.Mutex
	collected []domain.EventID
	report    results.CollectionReport
	err       error
}

func (c *recordingCollector) CollectForEvent(_ context.Context, ev eventrepo.Event) (results.CollectionReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collected = append(c.collected, ev.ID)
	r := c.report
	r.EventID = ev.ID
	return r, c.err
}

func (c *recordingCollector) events() []domain.EventID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.EventID(nil), c.collected...)
}

type fixture struct {
	svc       *Service
	events    *memevents.Repo
	chapters  *memchapters.Repo
	collector *recordingCollector
	clk       *memclock.ManualClock
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		events:    memevents.NewRepo(),
		chapters:  memchapters.NewRepo(),
		collector: &recordingCollector{},
		clk:       memclock.NewManualClock(now),
	}
	if err := f.chapters.Create(context.Background(), chapterrepo.Chapter{
		ID: "ch-1", Name: "Seattle", Timezone: "UTC",
	}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	f.svc = NewService(f.events, f.chapters, f.collector, f.clk)
	return f
}

func (f *fixture) addEvent(t *testing.T, id domain.EventID, status domain.EventStatus) {
	t.Helper()
	// 200 km brevet starting 2026-05-01 08:00 UTC; the 13.5 h limit puts the
	// closing time at 21:30 the same day.
	if err := f.events.Create(context.Background(), eventrepo.Event{
		ID:           id,
		ChapterID:    "ch-1",
		Name:         "Spring 200",
		Type:         domain.EventTypeBrevet,
		DistanceKm:   200,
		Date:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartMinutes: 480,
		Status:       status,
	}); err != nil {
		t.Fatalf("create event %s: %v", id, err)
	}
}

func TestClosingTime(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	ev, err := f.events.GetByID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	closing, err := f.svc.ClosingTime(context.Background(), ev)
	if err != nil {
		t.Fatalf("ClosingTime: %v", err)
	}
	want := time.Date(2026, 5, 1, 21, 30, 0, 0, time.UTC)
	if !closing.Equal(want) {
		t.Fatalf("closing = %v, want %v", closing, want)
	}
}

func TestClosingTimeUsesChapterZone(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	if err := f.chapters.Create(context.Background(), chapterrepo.Chapter{
		ID: "ch-2", Name: "Vancouver", Timezone: "America/Vancouver",
	}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	if err := f.events.Create(context.Background(), eventrepo.Event{
		ID:           "ev-2",
		ChapterID:    "ch-2",
		Type:         domain.EventTypeBrevet,
		DistanceKm:   200,
		Date:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartMinutes: 480,
		Status:       domain.EventStatusScheduled,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	ev, _ := f.events.GetByID(context.Background(), "ev-2")
	closing, err := f.svc.ClosingTime(context.Background(), ev)
	if err != nil {
		t.Fatalf("ClosingTime: %v", err)
	}
	// 08:00 PDT is 15:00 UTC in May, so the limit lands at 04:30 UTC next day.
	want := time.Date(2026, 5, 2, 4, 30, 0, 0, time.UTC)
	if !closing.UTC().Equal(want) {
		t.Fatalf("closing = %v, want %v", closing.UTC(), want)
	}
}

func TestSweepCompletesExpiredEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	report, err := f.svc.CompleteExpiredEvents(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if report.Checked != 1 || report.Completed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.CompletedEvents) != 1 || report.CompletedEvents[0] != "ev-1" {
		t.Fatalf("completed events = %v", report.CompletedEvents)
	}
	ev, _ := f.events.GetByID(context.Background(), "ev-1")
	if ev.Status != domain.EventStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", ev.Status)
	}
	if got := f.collector.events(); len(got) != 1 || got[0] != "ev-1" {
		t.Fatalf("collected = %v", got)
	}
}

func TestSweepSkipsEventsStillOpen(t *testing.T) {
	t.Parallel()
	// 21:00 is inside the 13.5 h window that ends 21:30.
	f := newFixture(t, time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	report, err := f.svc.CompleteExpiredEvents(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if report.Checked != 1 || report.Completed != 0 {
		t.Fatalf("report = %+v", report)
	}
	ev, _ := f.events.GetByID(context.Background(), "ev-1")
	if ev.Status != domain.EventStatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", ev.Status)
	}
	if len(f.collector.events()) != 0 {
		t.Fatalf("collector ran for an open event")
	}
}

func TestSweepExactlyAtClosingDoesNotComplete(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 21, 30, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	report, err := f.svc.CompleteExpiredEvents(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if report.Completed != 0 {
		t.Fatalf("event completed exactly at the limit; report = %+v", report)
	}
}

func TestSweepCollectionFailureKeepsTransition(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)
	f.collector.err = errors.New("smtp down")

	report, err := f.svc.CompleteExpiredEvents(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if report.Completed != 1 {
		t.Fatalf("completed=%d, want 1", report.Completed)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v", report.Errors)
	}
	ev, _ := f.events.GetByID(context.Background(), "ev-1")
	if ev.Status != domain.EventStatusCompleted {
		t.Fatalf("collection failure rolled back the transition: %s", ev.Status)
	}
}

func TestSweepReportsPerRiderErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)
	f.collector.report = results.CollectionReport{
		ResultsCreated: 2,
		EmailsSent:     1,
		Errors:         []string{"Bob Bravo: send email: mailbox full"},
	}

	report, err := f.svc.CompleteExpiredEvents(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if len(report.Errors) != 1 || report.Errors[0] != "Bob Bravo: send email: mailbox full" {
		t.Fatalf("errors = %v", report.Errors)
	}
}

// overlappingCollector re-enters the sweep from inside a run, standing in
// for a second trigger firing mid-sweep.
type overlappingCollector struct {
	svc        *Service
	overlapErr error
}

func (c *overlappingCollector) CollectForEvent(ctx context.Context, _ eventrepo.Event) (results.CollectionReport, error) {
	_, c.overlapErr = c.svc.CompleteExpiredEvents(ctx)
	return results.CollectionReport{}, nil
}

func TestSweepOverlapRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	oc := &overlappingCollector{svc: f.svc}
	f.svc.collector = oc

	if _, err := f.svc.CompleteExpiredEvents(context.Background()); err != nil {
		t.Fatalf("CompleteExpiredEvents: %v", err)
	}
	if !errors.Is(oc.overlapErr, ErrSweepInProgress) {
		t.Fatalf("overlapping sweep err=%v, want ErrSweepInProgress", oc.overlapErr)
	}
}

func TestCancelEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	ev, err := f.svc.CancelEvent(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}
	if ev.Status != domain.EventStatusCancelled {
		t.Fatalf("status = %s", ev.Status)
	}

	// Cancelled is terminal.
	_, err = f.svc.CancelEvent(context.Background(), "ev-1")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code != "INVALID_STATUS" || appErr.Status != 409 {
		t.Fatalf("err=%v, want INVALID_STATUS 409", err)
	}
}

func TestSubmitToACPRequiresCompleted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	f.addEvent(t, "ev-1", domain.EventStatusScheduled)

	_, err := f.svc.SubmitToACP(context.Background(), "ev-1")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code != "INVALID_STATUS" {
		t.Fatalf("scheduled -> submitted allowed: %v", err)
	}

	f.addEvent(t, "ev-2", domain.EventStatusCompleted)
	ev, err := f.svc.SubmitToACP(context.Background(), "ev-2")
	if err != nil {
		t.Fatalf("SubmitToACP: %v", err)
	}
	if ev.Status != domain.EventStatusSubmitted {
		t.Fatalf("status = %s", ev.Status)
	}
}

func TestTransitionUnknownEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	_, err := f.svc.CancelEvent(context.Background(), "missing")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" || appErr.Status != 404 {
		t.Fatalf("err=%v, want NOT_FOUND 404", err)
	}
}
