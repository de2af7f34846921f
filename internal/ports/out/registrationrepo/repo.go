package registrationrepo

import (
	"context"
	"errors"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("registration not found")
	ErrAlreadyExists = errors.New("registration already exists")
)

// Registration is the persistence shape used by the registration repository.
type Registration struct {
	ID      domain.RegistrationID
	EventID domain.EventID
	RiderID domain.RiderID

	Status domain.RegistrationStatus
	// ShareRegistration records the rider's consent to appear on the public
	// rider list for the event.
	ShareRegistration bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted registrations.
type Repository interface {
	Create(ctx context.Context, r Registration) error
	Save(ctx context.Context, r Registration) error

	// ListActiveByEvent returns REGISTERED-status registrations for an event,
	// ordered by creation time then ID.
	ListActiveByEvent(ctx context.Context, eventID domain.EventID) ([]Registration, error)
}
