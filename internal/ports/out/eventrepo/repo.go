package eventrepo

import (
	"context"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// Event is the persistence shape used by the event repository.
// It is not an HTTP DTO.
type Event struct {
	ID        domain.EventID
	ChapterID domain.ChapterID
	// RouteID is nil for events entered without a curated route.
	RouteID *domain.RouteID

	Name       string
	Type       domain.EventType
	DistanceKm int

	// Date carries date-only semantics; time-of-day lives in StartMinutes.
	Date time.Time
	// StartMinutes is minutes after local midnight. Stores apply the 08:00
	// default when an event is created without one.
	StartMinutes int

	StartLocation *string

	Status domain.EventStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted events.
//
// Result ordering expectations:
//   - List methods return events ordered by Date ascending, then ID, to keep
//     batch processing deterministic.
type Repository interface {
	Create(ctx context.Context, e Event) error
	Save(ctx context.Context, e Event) error

	GetByID(ctx context.Context, id domain.EventID) (Event, error)

	// ListByStatus returns all events currently in the given status.
	ListByStatus(ctx context.Context, status domain.EventStatus) ([]Event, error)

	// ListByChapter returns all events belonging to a chapter, any status.
	ListByChapter(ctx context.Context, chapterID domain.ChapterID) ([]Event, error)
}
