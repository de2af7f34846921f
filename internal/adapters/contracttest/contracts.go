// Package contracttest holds behavioral contracts every repository
// implementation must satisfy. Memory and Postgres adapters run the same
// suites.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	chapterport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	eventport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	registrationport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
	resultport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
	riderport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
	routeport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

type CleanupFunc = func()

// Deps holds the sibling repositories a suite needs to satisfy foreign keys.
type Deps struct {
	Chapters chapterport.Repository
	Events   eventport.Repository
	Riders   riderport.Repository
}

type EventRepoFactory func(t *testing.T) (eventport.Repository, Deps, CleanupFunc)
type RiderRepoFactory func(t *testing.T) (riderport.Repository, CleanupFunc)
type RegistrationRepoFactory func(t *testing.T) (registrationport.Repository, Deps, CleanupFunc)
type ResultRepoFactory func(t *testing.T) (resultport.Repository, Deps, CleanupFunc)
type RouteRepoFactory func(t *testing.T) (routeport.Repository, CleanupFunc)
type ChapterRepoFactory func(t *testing.T) (chapterport.Repository, CleanupFunc)

func seedChapter(t *testing.T, ctx context.Context, repo chapterport.Repository) domain.ChapterID {
	t.Helper()
	id := domain.ChapterID(uuid.NewString())
	now := time.Unix(1000, 0).UTC()
	if err := repo.Create(ctx, chapterport.Chapter{
		ID:        id,
		Name:      "Seattle",
		Timezone:  "America/Los_Angeles",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed chapter: %v", err)
	}
	return id
}

func seedEvent(t *testing.T, ctx context.Context, repo eventport.Repository, chapterID domain.ChapterID) domain.EventID {
	t.Helper()
	id := domain.EventID(uuid.NewString())
	now := time.Unix(1000, 0).UTC()
	if err := repo.Create(ctx, eventport.Event{
		ID:           id,
		ChapterID:    chapterID,
		Name:         "Spring 200",
		Type:         domain.EventTypeBrevet,
		DistanceKm:   200,
		Date:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartMinutes: 480,
		Status:       domain.EventStatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return id
}

func seedRider(t *testing.T, ctx context.Context, repo riderport.Repository, first, last string) domain.RiderID {
	t.Helper()
	id := domain.RiderID(uuid.NewString())
	now := time.Unix(1000, 0).UTC()
	email := first + "@example.com"
	if err := repo.Create(ctx, riderport.Rider{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Email:     &email,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed rider: %v", err)
	}
	return id
}

func RunEventRepo(t *testing.T, newRepo EventRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, deps, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	chapterID := seedChapter(t, ctx, deps.Chapters)

	now := time.Unix(1000, 0).UTC()
	id := domain.EventID(uuid.NewString())
	ev := eventport.Event{
		ID:         id,
		ChapterID:  chapterID,
		Name:       "Spring 200",
		Type:       domain.EventTypeBrevet,
		DistanceKm: 200,
		Date:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:     domain.EventStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(ctx, ev); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, ev); !errors.Is(err, eventport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	// The 08:00 default applies when no start time was given.
	if got.StartMinutes != domain.DefaultStartMinutes {
		t.Fatalf("StartMinutes=%d, want %d", got.StartMinutes, domain.DefaultStartMinutes)
	}

	got.Status = domain.EventStatusCompleted
	got.UpdatedAt = now.Add(time.Hour)
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after Save: %v", err)
	}
	if saved.Status != domain.EventStatusCompleted {
		t.Fatalf("status=%s, want COMPLETED", saved.Status)
	}

	// Listing by status sees the transition.
	completed, err := repo.ListByStatus(ctx, domain.EventStatusCompleted)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != id {
		t.Fatalf("completed = %v", completed)
	}
	scheduled, err := repo.ListByStatus(ctx, domain.EventStatusScheduled)
	if err != nil {
		t.Fatalf("ListByStatus scheduled: %v", err)
	}
	if len(scheduled) != 0 {
		t.Fatalf("scheduled = %v, want empty", scheduled)
	}

	// ListByChapter is date-ordered.
	earlierID := domain.EventID(uuid.NewString())
	earlier := ev
	earlier.ID = earlierID
	earlier.Date = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, earlier); err != nil {
		t.Fatalf("Create earlier: %v", err)
	}
	byChapter, err := repo.ListByChapter(ctx, chapterID)
	if err != nil {
		t.Fatalf("ListByChapter: %v", err)
	}
	if len(byChapter) != 2 || byChapter[0].ID != earlierID {
		t.Fatalf("byChapter = %v, want earlier event first", byChapter)
	}

	if _, err := repo.GetByID(ctx, domain.EventID(uuid.NewString())); !errors.Is(err, eventport.ErrNotFound) {
		t.Fatalf("missing GetByID err=%v, want ErrNotFound", err)
	}
	missing := ev
	missing.ID = domain.EventID(uuid.NewString())
	if err := repo.Save(ctx, missing); !errors.Is(err, eventport.ErrNotFound) {
		t.Fatalf("missing Save err=%v, want ErrNotFound", err)
	}
}

func RunRiderRepo(t *testing.T, newRepo RiderRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	bID := seedRider(t, ctx, repo, "Bob", "Zimmerman")
	aID := seedRider(t, ctx, repo, "Ann", "alpha")

	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Ann" {
		t.Fatalf("rider = %+v", got)
	}

	got.LastName = "Alpha-Beta"
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// List orders by last then first name, case-insensitively.
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != aID || all[1].ID != bID {
		t.Fatalf("list order = %v", all)
	}

	if _, err := repo.GetByID(ctx, domain.RiderID(uuid.NewString())); !errors.Is(err, riderport.ErrNotFound) {
		t.Fatalf("missing GetByID err=%v, want ErrNotFound", err)
	}
}

func RunRegistrationRepo(t *testing.T, newRepo RegistrationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, deps, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	chapterID := seedChapter(t, ctx, deps.Chapters)
	eventID := seedEvent(t, ctx, deps.Events, chapterID)
	ann := seedRider(t, ctx, deps.Riders, "Ann", "Alpha")
	bob := seedRider(t, ctx, deps.Riders, "Bob", "Bravo")

	now := time.Unix(1000, 0).UTC()
	annReg := registrationport.Registration{
		ID:        domain.RegistrationID(uuid.NewString()),
		EventID:   eventID,
		RiderID:   ann,
		Status:    domain.RegistrationStatusRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, annReg); err != nil {
		t.Fatalf("Create ann: %v", err)
	}
	bobReg := registrationport.Registration{
		ID:        domain.RegistrationID(uuid.NewString()),
		EventID:   eventID,
		RiderID:   bob,
		Status:    domain.RegistrationStatusRegistered,
		CreatedAt: now.Add(time.Minute),
		UpdatedAt: now.Add(time.Minute),
	}
	if err := repo.Create(ctx, bobReg); err != nil {
		t.Fatalf("Create bob: %v", err)
	}

	active, err := repo.ListActiveByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("ListActiveByEvent: %v", err)
	}
	if len(active) != 2 || active[0].RiderID != ann {
		t.Fatalf("active = %v, want ann first", active)
	}

	// A cancelled registration drops out of the active list.
	bobReg.Status = domain.RegistrationStatusCancelled
	bobReg.UpdatedAt = now.Add(2 * time.Minute)
	if err := repo.Save(ctx, bobReg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	active, err = repo.ListActiveByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("ListActiveByEvent: %v", err)
	}
	if len(active) != 1 || active[0].RiderID != ann {
		t.Fatalf("active after cancel = %v", active)
	}
}

func RunResultRepo(t *testing.T, newRepo ResultRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, deps, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	chapterID := seedChapter(t, ctx, deps.Chapters)
	eventID := seedEvent(t, ctx, deps.Events, chapterID)
	ann := seedRider(t, ctx, deps.Riders, "Ann", "Alpha")

	now := time.Unix(1000, 0).UTC()
	res := resultport.Result{
		ID:         domain.ResultID(uuid.NewString()),
		EventID:    eventID,
		RiderID:    ann,
		Status:     domain.ResultStatusPending,
		Token:      domain.SubmissionToken(uuid.NewString()),
		Season:     2026,
		DistanceKm: 200,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(ctx, res); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// (event, rider) uniqueness.
	dup := res
	dup.ID = domain.ResultID(uuid.NewString())
	dup.Token = domain.SubmissionToken(uuid.NewString())
	if err := repo.Create(ctx, dup); !errors.Is(err, resultport.ErrAlreadyExists) {
		t.Fatalf("duplicate pair Create err=%v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != res.ID || got.Season != 2026 || got.DistanceKm != 200 {
		t.Fatalf("result = %+v", got)
	}

	finish := "13:30"
	gpxPath := string(eventID) + "/" + string(ann) + "/gpx-1-abcd.gpx"
	got.Status = domain.ResultStatusFinished
	got.FinishTime = &finish
	got.GPXPath = &gpxPath
	got.CardPhotoPaths = []string{"photo-1.jpg", "photo-2.jpg"}
	submitted := now.Add(time.Hour)
	got.SubmittedAt = &submitted
	got.UpdatedAt = submitted
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	saved, err := repo.GetByToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("GetByToken after Save: %v", err)
	}
	if saved.Status != domain.ResultStatusFinished || saved.FinishTime == nil || *saved.FinishTime != "13:30" {
		t.Fatalf("saved = %+v", saved)
	}
	if len(saved.CardPhotoPaths) != 2 {
		t.Fatalf("photos = %v", saved.CardPhotoPaths)
	}
	// Token, event, and rider survive a Save untouched.
	if saved.Token != res.Token || saved.EventID != eventID || saved.RiderID != ann {
		t.Fatalf("immutable fields changed: %+v", saved)
	}

	rows, err := repo.ListByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}

	if _, err := repo.GetByToken(ctx, domain.SubmissionToken(uuid.NewString())); !errors.Is(err, resultport.ErrNotFound) {
		t.Fatalf("missing GetByToken err=%v, want ErrNotFound", err)
	}
}

func RunRouteRepo(t *testing.T, newRepo RouteRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	plannerRef := "rwgps-123"
	rt := routeport.Route{
		ID:         domain.RouteID(uuid.NewString()),
		Name:       "Snohomish 200",
		DistanceKm: 200,
		Controls: []domain.Control{
			{Name: "Granite Falls", DistanceKm: 55},
			{Name: "Darrington", DistanceKm: 100.5},
		},
		PlannerRef: &plannerRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Create(ctx, rt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, rt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Controls) != 2 || got.Controls[1].DistanceKm != 100.5 {
		t.Fatalf("controls = %v", got.Controls)
	}
	if got.PlannerRef == nil || *got.PlannerRef != plannerRef {
		t.Fatalf("plannerRef = %v", got.PlannerRef)
	}

	got.Controls = append(got.Controls, domain.Control{Name: "Arlington", DistanceKm: 148})
	got.UpdatedAt = now.Add(time.Hour)
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := repo.GetByID(ctx, rt.ID)
	if err != nil {
		t.Fatalf("GetByID after Save: %v", err)
	}
	if len(saved.Controls) != 3 {
		t.Fatalf("controls after save = %v", saved.Controls)
	}

	if _, err := repo.GetByID(ctx, domain.RouteID(uuid.NewString())); !errors.Is(err, routeport.ErrNotFound) {
		t.Fatalf("missing GetByID err=%v, want ErrNotFound", err)
	}
}

func RunChapterRepo(t *testing.T, newRepo ChapterRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	id := domain.ChapterID(uuid.NewString())
	ch := chapterport.Chapter{
		ID:           id,
		Name:         "Seattle",
		ContactEmail: "vp@cascaderando.org",
		Timezone:     "America/Los_Angeles",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, ch); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, ch); !errors.Is(err, chapterport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Timezone != "America/Los_Angeles" || got.ContactEmail != "vp@cascaderando.org" {
		t.Fatalf("chapter = %+v", got)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("list = %v", all)
	}

	if _, err := repo.GetByID(ctx, domain.ChapterID(uuid.NewString())); !errors.Is(err, chapterport.ErrNotFound) {
		t.Fatalf("missing GetByID err=%v, want ErrNotFound", err)
	}
}
