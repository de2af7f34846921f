package routerepo

import (
	"context"
	"errors"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("route not found")
	ErrAlreadyExists = errors.New("route already exists")
)

// Route is the persistence shape used by the route repository.
type Route struct {
	ID   domain.RouteID
	Name string

	DistanceKm int

	// Controls is the curated, ordered checkpoint list. The implicit start
	// (0 km) and finish (DistanceKm) are not stored.
	Controls []domain.Control

	// PlannerRef is the external route-planning service's identifier for
	// this route; nil when the route was entered by hand.
	PlannerRef *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted routes.
type Repository interface {
	Create(ctx context.Context, r Route) error
	Save(ctx context.Context, r Route) error

	GetByID(ctx context.Context, id domain.RouteID) (Route, error)
}
