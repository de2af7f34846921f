package chapterrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
)

// Repo is an in-memory implementation of chapterrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.ChapterID]chapterrepo.Chapter
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.ChapterID]chapterrepo.Chapter)}
}

func (r *Repo) Create(ctx context.Context, c chapterrepo.Chapter) error {
	_ = ctx
	if c.ID == "" {
		return chapterrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; ok {
		return chapterrepo.ErrAlreadyExists
	}
	r.byID[c.ID] = c
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ChapterID) (chapterrepo.Chapter, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return chapterrepo.Chapter{}, chapterrepo.ErrNotFound
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context) ([]chapterrepo.Chapter, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chapterrepo.Chapter, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
