package riderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("rider not found")
	ErrAlreadyExists = errors.New("rider already exists")
)

// Rider is the persistence shape used by the rider repository.
type Rider struct {
	ID domain.RiderID

	FirstName string
	LastName  string

	Email  *string
	Gender domain.Gender

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted riders.
//
// List returns riders ordered by (LastName, FirstName) ascending to keep
// match-candidate iteration deterministic.
type Repository interface {
	Create(ctx context.Context, r Rider) error
	Save(ctx context.Context, r Rider) error

	GetByID(ctx context.Context, id domain.RiderID) (Rider, error)

	List(ctx context.Context) ([]Rider, error)
}
