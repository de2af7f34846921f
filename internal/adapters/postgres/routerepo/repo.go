package routerepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

// Repo is a Postgres implementation of routerepo.Repository. Controls are a
// jsonb blob: they are only read as a whole, route order intact.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// controlRow is the jsonb shape of one control.
type controlRow struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distanceKm"`
}

func (r *Repo) Create(ctx context.Context, rt routerepo.Route) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	routeUUID, err := uuid.Parse(string(rt.ID))
	if err != nil {
		return fmt.Errorf("invalid route id: %w", err)
	}
	controls, err := marshalControls(rt.Controls)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO routes (id, name, distance_km, controls, planner_ref, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		routeUUID,
		rt.Name,
		rt.DistanceKm,
		controls,
		rt.PlannerRef,
		rt.CreatedAt.UTC(),
		rt.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return routerepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, rt routerepo.Route) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	routeUUID, err := uuid.Parse(string(rt.ID))
	if err != nil {
		return fmt.Errorf("invalid route id: %w", err)
	}
	controls, err := marshalControls(rt.Controls)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE routes
		SET name = $2,
		    distance_km = $3,
		    controls = $4,
		    planner_ref = $5,
		    updated_at = $6
		WHERE id = $1
	`,
		routeUUID,
		rt.Name,
		rt.DistanceKm,
		controls,
		rt.PlannerRef,
		rt.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return routerepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RouteID) (routerepo.Route, error) {
	if r.pool == nil {
		return routerepo.Route{}, errors.New("nil postgres pool")
	}
	routeUUID, err := uuid.Parse(string(id))
	if err != nil {
		return routerepo.Route{}, routerepo.ErrNotFound
	}

	var (
		rid        uuid.UUID
		name       string
		distanceKm int
		controls   []byte
		plannerRef *string
		createdAt  time.Time
		updatedAt  time.Time
	)
	err = r.pool.QueryRow(ctx, `
		SELECT id, name, distance_km, controls, planner_ref, created_at, updated_at
		FROM routes
		WHERE id = $1
	`, routeUUID).Scan(&rid, &name, &distanceKm, &controls, &plannerRef, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return routerepo.Route{}, routerepo.ErrNotFound
		}
		return routerepo.Route{}, err
	}

	parsed, err := unmarshalControls(controls)
	if err != nil {
		return routerepo.Route{}, fmt.Errorf("route %s: %w", rid, err)
	}
	return routerepo.Route{
		ID:         domain.RouteID(rid.String()),
		Name:       name,
		DistanceKm: distanceKm,
		Controls:   parsed,
		PlannerRef: plannerRef,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  updatedAt.UTC(),
	}, nil
}

func marshalControls(controls []domain.Control) ([]byte, error) {
	rows := make([]controlRow, 0, len(controls))
	for _, c := range controls {
		rows = append(rows, controlRow{Name: c.Name, DistanceKm: c.DistanceKm})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal controls: %w", err)
	}
	return b, nil
}

func unmarshalControls(b []byte) ([]domain.Control, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var rows []controlRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal controls: %w", err)
	}
	out := make([]domain.Control, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Control{Name: row.Name, DistanceKm: row.DistanceKm})
	}
	return out, nil
}
