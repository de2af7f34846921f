// Package calendar renders per-chapter iCalendar feeds of scheduled rides.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/acp"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/clock"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

const productID = "-//Cascade Randonneurs//Brevet Planner//EN"

var ErrChapterNotFound = errors.New("chapter not found")

type Service struct {
	chapters chapterrepo.Repository
	events   eventrepo.Repository
	clk      clock.Clock

	// baseURL is the public site root used for event links and UID hosts.
	baseURL string
}

func NewService(chapters chapterrepo.Repository, events eventrepo.Repository, clk clock.Clock, baseURL string) *Service {
	return &Service{
		chapters: chapters,
		events:   events,
		clk:      clk,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Feed serializes the chapter's events as an iCalendar document. Cancelled
// events are kept with STATUS:CANCELLED so subscribed clients remove them.
func (s *Service) Feed(ctx context.Context, chapterID domain.ChapterID) (string, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, chapterrepo.ErrNotFound) {
			return "", ErrChapterNotFound
		}
		return "", fmt.Errorf("load chapter: %w", err)
	}

	events, err := s.events.ListByChapter(ctx, chapterID)
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(chapter.Name + " brevets")

	loc := chapter.Location()
	now := s.clk.Now()
	for _, e := range events {
		if err := s.addEvent(cal, e, loc, now); err != nil {
			return "", fmt.Errorf("event %s: %w", e.ID, err)
		}
	}
	return cal.Serialize(), nil
}

func (s *Service) addEvent(cal *ics.Calendar, e eventrepo.Event, loc *time.Location, now time.Time) error {
	summary := domain.EventSummary{
		ID:           e.ID,
		ChapterID:    e.ChapterID,
		RouteID:      e.RouteID,
		Name:         e.Name,
		Type:         e.Type,
		DistanceKm:   e.DistanceKm,
		Date:         e.Date,
		StartMinutes: e.StartMinutes,
		Status:       e.Status,
	}
	start := summary.StartAt(loc)

	dur, err := acp.EstimateDuration(e.Type, float64(e.DistanceKm))
	if err != nil {
		return err
	}

	ev := cal.AddEvent(fmt.Sprintf("%s@%s", e.ID, s.uidHost()))
	ev.SetDtStampTime(now.UTC())
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(dur))
	ev.SetSummary(fmt.Sprintf("%s (%d km %s)", e.Name, e.DistanceKm, strings.ToLower(string(e.Type))))
	if e.StartLocation != nil && *e.StartLocation != "" {
		ev.SetLocation(*e.StartLocation)
	}
	ev.SetURL(fmt.Sprintf("%s/events/%s", s.baseURL, e.ID))
	if e.Status == domain.EventStatusCancelled {
		ev.SetStatus(ics.ObjectStatusCancelled)
	}
	return nil
}

// uidHost derives the UID domain part from the configured base URL so feed
// entries stay stable across deploys behind the same hostname.
func (s *Service) uidHost() string {
	u, err := url.Parse(s.baseURL)
	if err != nil || u.Host == "" {
		return "brevet-planner.local"
	}
	return u.Hostname()
}
