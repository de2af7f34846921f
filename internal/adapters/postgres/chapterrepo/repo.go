package chapterrepo

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
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
)

// Repo is a Postgres implementation of chapterrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, c chapterrepo.Chapter) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	chapterUUID, err := uuid.Parse(string(c.ID))
	if err != nil {
		return fmt.Errorf("invalid chapter id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO chapters (id, name, contact_email, timezone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		chapterUUID,
		c.Name,
		c.ContactEmail,
		c.Timezone,
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return chapterrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ChapterID) (chapterrepo.Chapter, error) {
	if r.pool == nil {
		return chapterrepo.Chapter{}, errors.New("nil postgres pool")
	}
	chapterUUID, err := uuid.Parse(string(id))
	if err != nil {
		return chapterrepo.Chapter{}, chapterrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, contact_email, timezone, created_at, updated_at
		FROM chapters
		WHERE id = $1
	`, chapterUUID)
	c, err := scanChapter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return chapterrepo.Chapter{}, chapterrepo.ErrNotFound
		}
		return chapterrepo.Chapter{}, err
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context) ([]chapterrepo.Chapter, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, contact_email, timezone, created_at, updated_at
		FROM chapters
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chapterrepo.Chapter, 0)
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanChapter(row pgx.Row) (chapterrepo.Chapter, error) {
	var (
		id           uuid.UUID
		name         string
		contactEmail string
		timezone     string
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&id, &name, &contactEmail, &timezone, &createdAt, &updatedAt); err != nil {
		return chapterrepo.Chapter{}, err
	}
	return chapterrepo.Chapter{
		ID:           domain.ChapterID(id.String()),
		Name:         name,
		ContactEmail: contactEmail,
		Timezone:     timezone,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}
