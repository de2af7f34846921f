package eventrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
)

// Repo is an in-memory implementation of eventrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.EventID]eventrepo.Event
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.EventID]eventrepo.Event)}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	if e.ID == "" {
		return eventrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	if e.StartMinutes == 0 {
		e.StartMinutes = domain.DefaultStartMinutes
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; ok {
		return eventrepo.ErrAlreadyExists
	}
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; !ok {
		return eventrepo.ErrNotFound
	}
	r.byID[e.ID] = cloneEvent(e)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *Repo) ListByStatus(ctx context.Context, status domain.EventStatus) ([]eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]eventrepo.Event, 0)
	for _, e := range r.byID {
		if e.Status == status {
			out = append(out, cloneEvent(e))
		}
	}
	sortEvents(out)
	return out, nil
}

func (r *Repo) ListByChapter(ctx context.Context, chapterID domain.ChapterID) ([]eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]eventrepo.Event, 0)
	for _, e := range r.byID {
		if e.ChapterID == chapterID {
			out = append(out, cloneEvent(e))
		}
	}
	sortEvents(out)
	return out, nil
}

func cloneEvent(e eventrepo.Event) eventrepo.Event {
	cp := e
	if e.RouteID != nil {
		v := *e.RouteID
		cp.RouteID = &v
	}
	if e.StartLocation != nil {
		v := *e.StartLocation
		cp.StartLocation = &v
	}
	return cp
}

func sortEvents(es []eventrepo.Event) {
	sort.Slice(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return string(a.ID) < string(b.ID)
	})
}
