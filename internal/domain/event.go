package domain

import "time"

type EventType string

const (
	EventTypeBrevet    EventType = "BREVET"
	EventTypePopulaire EventType = "POPULAIRE"
	EventTypeFleche    EventType = "FLECHE"
	EventTypePermanent EventType = "PERMANENT"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusSubmitted EventStatus = "SUBMITTED"
)

// DefaultStartMinutes is the assumed start time (08:00) when an event does
// not carry an explicit one.
const DefaultStartMinutes = 8 * 60

// CanTransition reports whether the status transition from -> to is legal.
// Transitions are monotonic forward (scheduled -> completed -> submitted);
// cancelled is terminal and reachable only from scheduled.
func CanTransition(from, to EventStatus) bool {
	switch from {
	case EventStatusScheduled:
		return to == EventStatusCompleted || to == EventStatusCancelled
	case EventStatusCompleted:
		return to == EventStatusSubmitted
	default:
		return false
	}
}

// EventSummary is the domain read model for an event as exposed to
// calendar/card consumers.
type EventSummary struct {
	ID         EventID
	ChapterID  ChapterID
	RouteID    *RouteID
	Name       string
	Type       EventType
	DistanceKm int

	// Date is the calendar date of the start (date-only semantics at the edges).
	Date time.Time
	// StartMinutes is the local start time as minutes after midnight.
	StartMinutes int

	StartLocation *string
	Status        EventStatus
}

// StartAt resolves the event's wall-clock start in loc.
func (e EventSummary) StartAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	d := e.Date
	return time.Date(d.Year(), d.Month(), d.Day(), 0, e.StartMinutes, 0, 0, loc)
}
