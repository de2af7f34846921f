package resultrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
)

// Repo is an in-memory implementation of resultrepo.Repository.
// It is safe for concurrent use and enforces (event, rider) uniqueness.
type Repo struct {
	mu      sync.RWMutex
	byID    map[domain.ResultID]resultrepo.Result
	byToken map[domain.SubmissionToken]domain.ResultID
	byPair  map[pairKey]domain.ResultID
}

type pairKey struct {
	event domain.EventID
	rider domain.RiderID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.ResultID]resultrepo.Result),
		byToken: make(map[domain.SubmissionToken]domain.ResultID),
		byPair:  make(map[pairKey]domain.ResultID),
	}
}

func (r *Repo) Create(ctx context.Context, res resultrepo.Result) error {
	_ = ctx
	if res.ID == "" || res.Token == "" {
		return resultrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[res.ID]; ok {
		return resultrepo.ErrAlreadyExists
	}
	if _, ok := r.byToken[res.Token]; ok {
		return resultrepo.ErrAlreadyExists
	}
	pk := pairKey{event: res.EventID, rider: res.RiderID}
	if _, ok := r.byPair[pk]; ok {
		return resultrepo.ErrAlreadyExists
	}
	r.byID[res.ID] = cloneResult(res)
	r.byToken[res.Token] = res.ID
	r.byPair[pk] = res.ID
	return nil
}

func (r *Repo) Save(ctx context.Context, res resultrepo.Result) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.byID[res.ID]
	if !ok {
		return resultrepo.ErrNotFound
	}
	// Token and (event, rider) are immutable once created.
	res.Token = prev.Token
	res.EventID = prev.EventID
	res.RiderID = prev.RiderID
	r.byID[res.ID] = cloneResult(res)
	return nil
}

func (r *Repo) GetByToken(ctx context.Context, token domain.SubmissionToken) (resultrepo.Result, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	if !ok {
		return resultrepo.Result{}, resultrepo.ErrNotFound
	}
	return cloneResult(r.byID[id]), nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]resultrepo.Result, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]resultrepo.Result, 0)
	for _, res := range r.byID {
		if res.EventID == eventID {
			out = append(out, cloneResult(res))
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

func cloneResult(res resultrepo.Result) resultrepo.Result {
	cp := res
	cp.FinishTime = cloneStringPtr(res.FinishTime)
	cp.GPXURL = cloneStringPtr(res.GPXURL)
	cp.GPXPath = cloneStringPtr(res.GPXPath)
	cp.Notes = cloneStringPtr(res.Notes)
	if res.CardPhotoPaths != nil {
		cp.CardPhotoPaths = append([]string(nil), res.CardPhotoPaths...)
	}
	cp.SubmittedAt = cloneTimePtr(res.SubmittedAt)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
