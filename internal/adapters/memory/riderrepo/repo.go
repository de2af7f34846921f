package riderrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
)

// Repo is an in-memory implementation of riderrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RiderID]riderrepo.Rider
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.RiderID]riderrepo.Rider)}
}

func (r *Repo) Create(ctx context.Context, rd riderrepo.Rider) error {
	_ = ctx
	if rd.ID == "" {
		return riderrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rd.ID]; ok {
		return riderrepo.ErrAlreadyExists
	}
	r.byID[rd.ID] = cloneRider(rd)
	return nil
}

func (r *Repo) Save(ctx context.Context, rd riderrepo.Rider) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rd.ID]; !ok {
		return riderrepo.ErrNotFound
	}
	r.byID[rd.ID] = cloneRider(rd)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.RiderID) (riderrepo.Rider, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rd, ok := r.byID[id]
	if !ok {
		return riderrepo.Rider{}, riderrepo.ErrNotFound
	}
	return cloneRider(rd), nil
}

func (r *Repo) List(ctx context.Context) ([]riderrepo.Rider, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]riderrepo.Rider, 0, len(r.byID))
	for _, rd := range r.byID {
		out = append(out, cloneRider(rd))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
		if al != bl {
			return al < bl
		}
		af, bf := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)
		if af != bf {
			return af < bf
		}
		return string(a.ID) < string(b.ID)
	})
	return out, nil
}

func cloneRider(rd riderrepo.Rider) riderrepo.Rider {
	cp := rd
	if rd.Email != nil {
		v := *rd.Email
		cp.Email = &v
	}
	return cp
}
