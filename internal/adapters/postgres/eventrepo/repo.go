package eventrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

// Repo is a Postgres implementation of eventrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const eventColumns = `
	id, chapter_id, route_id, name, type, distance_km,
	date, start_minutes, start_location, status, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	chapterUUID, err := uuid.Parse(string(e.ChapterID))
	if err != nil {
		return fmt.Errorf("invalid chapter id: %w", err)
	}
	routeUUID, err := parseOptionalUUID((*string)(e.RouteID))
	if err != nil {
		return fmt.Errorf("invalid route id: %w", err)
	}

	startMinutes := e.StartMinutes
	if startMinutes == 0 {
		startMinutes = domain.DefaultStartMinutes
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		eventUUID,
		chapterUUID,
		routeUUID,
		e.Name,
		string(e.Type),
		e.DistanceKm,
		dateOf(e.Date),
		startMinutes,
		e.StartLocation,
		string(e.Status),
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return eventrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	routeUUID, err := parseOptionalUUID((*string)(e.RouteID))
	if err != nil {
		return fmt.Errorf("invalid route id: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET route_id = $2,
		    name = $3,
		    type = $4,
		    distance_km = $5,
		    date = $6,
		    start_minutes = $7,
		    start_location = $8,
		    status = $9,
		    updated_at = $10
		WHERE id = $1
	`,
		eventUUID,
		routeUUID,
		e.Name,
		string(e.Type),
		e.DistanceKm,
		dateOf(e.Date),
		e.StartMinutes,
		e.StartLocation,
		string(e.Status),
		e.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return eventrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	if r.pool == nil {
		return eventrepo.Event{}, errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(id))
	if err != nil {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventUUID)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eventrepo.Event{}, eventrepo.ErrNotFound
		}
		return eventrepo.Event{}, err
	}
	return e, nil
}

func (r *Repo) ListByStatus(ctx context.Context, status domain.EventStatus) ([]eventrepo.Event, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE status = $1
		ORDER BY date ASC, id ASC
	`, string(status))
}

func (r *Repo) ListByChapter(ctx context.Context, chapterID domain.ChapterID) ([]eventrepo.Event, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	chapterUUID, err := uuid.Parse(string(chapterID))
	if err != nil {
		return []eventrepo.Event{}, nil
	}
	return r.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE chapter_id = $1
		ORDER BY date ASC, id ASC
	`, chapterUUID)
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]eventrepo.Event, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventrepo.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (eventrepo.Event, error) {
	var (
		id            uuid.UUID
		chapterID     uuid.UUID
		routeID       *uuid.UUID
		name          string
		typ           string
		distanceKm    int
		date          pgtype.Date
		startMinutes  int
		startLocation *string
		status        string
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := row.Scan(
		&id, &chapterID, &routeID, &name, &typ, &distanceKm,
		&date, &startMinutes, &startLocation, &status, &createdAt, &updatedAt,
	); err != nil {
		return eventrepo.Event{}, err
	}

	e := eventrepo.Event{
		ID:            domain.EventID(id.String()),
		ChapterID:     domain.ChapterID(chapterID.String()),
		Name:          name,
		Type:          domain.EventType(typ),
		DistanceKm:    distanceKm,
		Date:          dateToTime(date),
		StartMinutes:  startMinutes,
		StartLocation: cloneStringPtr(startLocation),
		Status:        domain.EventStatus(status),
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	}
	if routeID != nil {
		rid := domain.RouteID(routeID.String())
		e.RouteID = &rid
	}
	return e, nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	u, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func dateOf(t time.Time) pgtype.Date {
	tt := t.UTC()
	return pgtype.Date{
		Time:  time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func dateToTime(d pgtype.Date) time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
