package registrationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
)

// Repo is a Postgres implementation of registrationrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, reg registrationrepo.Registration) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	regUUID, err := uuid.Parse(string(reg.ID))
	if err != nil {
		return fmt.Errorf("invalid registration id: %w", err)
	}
	eventUUID, err := uuid.Parse(string(reg.EventID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	riderUUID, err := uuid.Parse(string(reg.RiderID))
	if err != nil {
		return fmt.Errorf("invalid rider id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO registrations (id, event_id, rider_id, status, share_registration, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		regUUID,
		eventUUID,
		riderUUID,
		string(reg.Status),
		reg.ShareRegistration,
		reg.CreatedAt.UTC(),
		reg.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return registrationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, reg registrationrepo.Registration) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	regUUID, err := uuid.Parse(string(reg.ID))
	if err != nil {
		return fmt.Errorf("invalid registration id: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE registrations
		SET status = $2,
		    share_registration = $3,
		    updated_at = $4
		WHERE id = $1
	`,
		regUUID,
		string(reg.Status),
		reg.ShareRegistration,
		reg.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return registrationrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) ListActiveByEvent(ctx context.Context, eventID domain.EventID) ([]registrationrepo.Registration, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(eventID))
	if err != nil {
		return []registrationrepo.Registration{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, rider_id, status, share_registration, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC
	`, eventUUID, string(domain.RegistrationStatusRegistered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]registrationrepo.Registration, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			evID      uuid.UUID
			riderID   uuid.UUID
			status    string
			share     bool
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &evID, &riderID, &status, &share, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		out = append(out, registrationrepo.Registration{
			ID:                domain.RegistrationID(id.String()),
			EventID:           domain.EventID(evID.String()),
			RiderID:           domain.RiderID(riderID.String()),
			Status:            domain.RegistrationStatus(status),
			ShareRegistration: share,
			CreatedAt:         createdAt.UTC(),
			UpdatedAt:         updatedAt.UTC(),
		})
	}
	return out, rows.Err()
}
