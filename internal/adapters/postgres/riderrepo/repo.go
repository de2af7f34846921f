package riderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
)

// Repo is a Postgres implementation of riderrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rd riderrepo.Rider) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	riderUUID, err := uuid.Parse(string(rd.ID))
	if err != nil {
		return fmt.Errorf("invalid rider id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO riders (id, first_name, last_name, email, gender, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		riderUUID,
		rd.FirstName,
		rd.LastName,
		rd.Email,
		string(rd.Gender),
		rd.CreatedAt.UTC(),
		rd.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return riderrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, rd riderrepo.Rider) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	riderUUID, err := uuid.Parse(string(rd.ID))
	if err != nil {
		return fmt.Errorf("invalid rider id: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE riders
		SET first_name = $2,
		    last_name = $3,
		    email = $4,
		    gender = $5,
		    updated_at = $6
		WHERE id = $1
	`,
		riderUUID,
		rd.FirstName,
		rd.LastName,
		rd.Email,
		string(rd.Gender),
		rd.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return riderrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RiderID) (riderrepo.Rider, error) {
	if r.pool == nil {
		return riderrepo.Rider{}, errors.New("nil postgres pool")
	}
	riderUUID, err := uuid.Parse(string(id))
	if err != nil {
		return riderrepo.Rider{}, riderrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, gender, created_at, updated_at
		FROM riders
		WHERE id = $1
	`, riderUUID)
	rd, err := scanRider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return riderrepo.Rider{}, riderrepo.ErrNotFound
		}
		return riderrepo.Rider{}, err
	}
	return rd, nil
}

func (r *Repo) List(ctx context.Context) ([]riderrepo.Rider, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, gender, created_at, updated_at
		FROM riders
		ORDER BY lower(last_name) ASC, lower(first_name) ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]riderrepo.Rider, 0)
	for rows.Next() {
		rd, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func scanRider(row pgx.Row) (riderrepo.Rider, error) {
	var (
		id        uuid.UUID
		firstName string
		lastName  string
		email     *string
		gender    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &firstName, &lastName, &email, &gender, &createdAt, &updatedAt); err != nil {
		return riderrepo.Rider{}, err
	}
	return riderrepo.Rider{
		ID:        domain.RiderID(id.String()),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Gender:    domain.Gender(gender),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}
