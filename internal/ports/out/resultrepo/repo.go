package resultrepo

import (
	"context"
	"errors"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

var (
	ErrNotFound = errors.New("result not found")
	// ErrAlreadyExists covers both ID and (event, rider) uniqueness: at most
	// one result exists per (event, rider) pair.
	ErrAlreadyExists = errors.New("result already exists")
)

// Result is the persistence shape used by the result repository.
type Result struct {
	ID      domain.ResultID
	EventID domain.EventID
	RiderID domain.RiderID

	Status domain.ResultStatus
	// FinishTime is the elapsed "H(HH):MM" string; meaningful only when
	// Status is FINISHED.
	FinishTime *string

	// Token authenticates the rider's one submission path. Generated once.
	Token domain.SubmissionToken

	// Season and DistanceKm are stamped at creation for record aggregation,
	// so later event edits do not rewrite history.
	Season     int
	DistanceKm int

	// GPXURL is a rider-provided link to an externally hosted track;
	// GPXPath is the storage key of an uploaded track file.
	GPXURL         *string
	GPXPath        *string
	CardPhotoPaths []string
	Notes          *string

	SubmittedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted results.
type Repository interface {
	Create(ctx context.Context, r Result) error
	Save(ctx context.Context, r Result) error

	GetByToken(ctx context.Context, token domain.SubmissionToken) (Result, error)

	// ListByEvent returns all results for an event, ordered by creation time
	// then ID.
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]Result, error)
}
