package chapterrepo

import (
	"context"
	"errors"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("chapter not found")
	ErrAlreadyExists = errors.New("chapter already exists")
)

// Chapter is the persistence shape used by the chapter repository.
type Chapter struct {
	ID   domain.ChapterID
	Name string

	// ContactEmail reaches the chapter VP; it appears in submission emails.
	ContactEmail string

	// Timezone is an IANA zone name ("America/Vancouver"). Event-local clock
	// times resolve in this zone; empty means UTC.
	Timezone string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the chapter's zone, falling back to UTC for an empty or
// unknown name.
func (c Chapter) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Repository provides access to persisted chapters.
type Repository interface {
	Create(ctx context.Context, c Chapter) error

	GetByID(ctx context.Context, id domain.ChapterID) (Chapter, error)

	List(ctx context.Context) ([]Chapter, error)
}
