package registrationrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
)

// Repo is an in-memory implementation of registrationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.RegistrationID]registrationrepo.Registration
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.RegistrationID]registrationrepo.Registration)}
}

func (r *Repo) Create(ctx context.Context, reg registrationrepo.Registration) error {
	_ = ctx
	if reg.ID == "" {
		return registrationrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[reg.ID]; ok {
		return registrationrepo.ErrAlreadyExists
	}
	r.byID[reg.ID] = reg
	return nil
}

func (r *Repo) Save(ctx context.Context, reg registrationrepo.Registration) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[reg.ID]; !ok {
		return registrationrepo.ErrNotFound
	}
	r.byID[reg.ID] = reg
	return nil
}

func (r *Repo) ListActiveByEvent(ctx context.Context, eventID domain.EventID) ([]registrationrepo.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registrationrepo.Registration, 0)
	for _, reg := range r.byID {
		if reg.EventID == eventID && reg.Status == domain.RegistrationStatusRegistered {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return string(a.ID) < string(b.ID)
	})
	return out, nil
}
