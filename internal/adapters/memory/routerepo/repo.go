package routerepo

import (
	"context"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

// Repo is an in-memory implementation of routerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RouteID]routerepo.Route
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.RouteID]routerepo.Route)}
}

func (r *Repo) Create(ctx context.Context, rt routerepo.Route) error {
	_ = ctx
	if rt.ID == "" {
		return routerepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rt.ID]; ok {
		return routerepo.ErrAlreadyExists
	}
	r.byID[rt.ID] = cloneRoute(rt)
	return nil
}

func (r *Repo) Save(ctx context.Context, rt routerepo.Route) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rt.ID]; !ok {
		return routerepo.ErrNotFound
	}
	r.byID[rt.ID] = cloneRoute(rt)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RouteID) (routerepo.Route, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.byID[id]
	if !ok {
		return routerepo.Route{}, routerepo.ErrNotFound
	}
	return cloneRoute(rt), nil
}

func cloneRoute(rt routerepo.Route) routerepo.Route {
	cp := rt
	if rt.Controls != nil {
		cp.Controls = append([]domain.Control(nil), rt.Controls...)
	}
	if rt.PlannerRef != nil {
		v := *rt.PlannerRef
		cp.PlannerRef = &v
	}
	return cp
}
