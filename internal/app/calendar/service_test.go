package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/chapterrepo"
	memclock "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/clock"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	chapterport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	eventport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

func newFixture(t *testing.T) (*Service, chapterport.Repository, eventport.Repository) {
	t.Helper()
	chapters := chapterrepo.NewRepo()
	events := eventrepo.NewRepo()
	clk := memclock.NewManualClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(chapters, events, clk, "https://rides.cascaderando.org/")
	return svc, chapters, events
}

func TestFeedRendersEvents(t *testing.T) {
	t.Parallel()
	svc, chapters, events := newFixture(t)
	ctx := context.Background()

	if err := chapters.Create(ctx, chapterport.Chapter{
		ID:       "ch-1",
		Name:     "Seattle",
		Timezone: "America/Los_Angeles",
	}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	loc := "Marymoor Park"
	if err := events.Create(ctx, eventport.Event{
		ID:            "ev-1",
		ChapterID:     "ch-1",
		Name:          "Spring 200",
		Type:          domain.EventTypeBrevet,
		DistanceKm:    200,
		Date:          time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartMinutes:  480,
		StartLocation: &loc,
		Status:        domain.EventStatusScheduled,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	feed, err := svc.Feed(ctx, "ch-1")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:ev-1@rides.cascaderando.org",
		"SUMMARY:Spring 200 (200 km brevet)",
		"LOCATION:Marymoor Park",
		"URL:https://rides.cascaderando.org/events/ev-1",
		"END:VCALENDAR",
	} {
		if !strings.Contains(feed, want) {
			t.Fatalf("feed missing %q:\n%s", want, feed)
		}
	}
	if strings.Contains(feed, "STATUS:CANCELLED") {
		t.Fatalf("scheduled event marked cancelled:\n%s", feed)
	}
}

func TestFeedMarksCancelledEvents(t *testing.T) {
	t.Parallel()
	svc, chapters, events := newFixture(t)
	ctx := context.Background()

	if err := chapters.Create(ctx, chapterport.Chapter{ID: "ch-1", Name: "Seattle"}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	if err := events.Create(ctx, eventport.Event{
		ID:         "ev-2",
		ChapterID:  "ch-1",
		Name:       "Rainy 300",
		Type:       domain.EventTypeBrevet,
		DistanceKm: 300,
		Date:       time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC),
		Status:     domain.EventStatusCancelled,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	feed, err := svc.Feed(ctx, "ch-1")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !strings.Contains(feed, "STATUS:CANCELLED") {
		t.Fatalf("cancelled event not marked:\n%s", feed)
	}
}

func TestFeedUnknownChapter(t *testing.T) {
	t.Parallel()
	svc, _, _ := newFixture(t)
	if _, err := svc.Feed(context.Background(), "nope"); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("err=%v, want ErrChapterNotFound", err)
	}
}
