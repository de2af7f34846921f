package resultrepo

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
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
)

// Repo is a Postgres implementation of resultrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const resultColumns = `
	id, event_id, rider_id, status, finish_time, token, season, distance_km,
	gpx_url, gpx_path, card_photo_paths, notes, submitted_at, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, res resultrepo.Result) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	resUUID, err := uuid.Parse(string(res.ID))
	if err != nil {
		return fmt.Errorf("invalid result id: %w", err)
	}
	eventUUID, err := uuid.Parse(string(res.EventID))
	if err != nil {
		return fmt.Errorf("invalid event id: %w", err)
	}
	riderUUID, err := uuid.Parse(string(res.RiderID))
	if err != nil {
		return fmt.Errorf("invalid rider id: %w", err)
	}

	photos := res.CardPhotoPaths
	if photos == nil {
		photos = []string{}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO results (`+resultColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		resUUID,
		eventUUID,
		riderUUID,
		string(res.Status),
		res.FinishTime,
		string(res.Token),
		res.Season,
		res.DistanceKm,
		res.GPXURL,
		res.GPXPath,
		photos,
		res.Notes,
		timePtrUTC(res.SubmittedAt),
		res.CreatedAt.UTC(),
		res.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return resultrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates the mutable fields. Token, event, and rider are immutable and
// deliberately absent from the SET list.
func (r *Repo) Save(ctx context.Context, res resultrepo.Result) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	resUUID, err := uuid.Parse(string(res.ID))
	if err != nil {
		return fmt.Errorf("invalid result id: %w", err)
	}

	photos := res.CardPhotoPaths
	if photos == nil {
		photos = []string{}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE results
		SET status = $2,
		    finish_time = $3,
		    gpx_url = $4,
		    gpx_path = $5,
		    card_photo_paths = $6,
		    notes = $7,
		    submitted_at = $8,
		    updated_at = $9
		WHERE id = $1
	`,
		resUUID,
		string(res.Status),
		res.FinishTime,
		res.GPXURL,
		res.GPXPath,
		photos,
		res.Notes,
		timePtrUTC(res.SubmittedAt),
		res.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return resultrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByToken(ctx context.Context, token domain.SubmissionToken) (resultrepo.Result, error) {
	if r.pool == nil {
		return resultrepo.Result{}, errors.New("nil postgres pool")
	}
	if token == "" {
		return resultrepo.Result{}, resultrepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM results WHERE token = $1`, string(token))
	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resultrepo.Result{}, resultrepo.ErrNotFound
		}
		return resultrepo.Result{}, err
	}
	return res, nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]resultrepo.Result, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	eventUUID, err := uuid.Parse(string(eventID))
	if err != nil {
		return []resultrepo.Result{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+resultColumns+`
		FROM results
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
	`, eventUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resultrepo.Result, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanResult(row pgx.Row) (resultrepo.Result, error) {
	var (
		id          uuid.UUID
		eventID     uuid.UUID
		riderID     uuid.UUID
		status      string
		finishTime  *string
		token       string
		season      int
		distanceKm  int
		gpxURL      *string
		gpxPath     *string
		photos      []string
		notes       *string
		submittedAt *time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(
		&id, &eventID, &riderID, &status, &finishTime, &token, &season, &distanceKm,
		&gpxURL, &gpxPath, &photos, &notes, &submittedAt, &createdAt, &updatedAt,
	); err != nil {
		return resultrepo.Result{}, err
	}
	return resultrepo.Result{
		ID:             domain.ResultID(id.String()),
		EventID:        domain.EventID(eventID.String()),
		RiderID:        domain.RiderID(riderID.String()),
		Status:         domain.ResultStatus(status),
		FinishTime:     finishTime,
		Token:          domain.SubmissionToken(token),
		Season:         season,
		DistanceKm:     distanceKm,
		GPXURL:         gpxURL,
		GPXPath:        gpxPath,
		CardPhotoPaths: photos,
		Notes:          notes,
		SubmittedAt:    timePtrUTC(submittedAt),
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      updatedAt.UTC(),
	}, nil
}

func timePtrUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
