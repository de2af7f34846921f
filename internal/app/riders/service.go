package riders

import (
	"context"
	"fmt"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
)

// Matching defaults used by the registration flow.
const (
	defaultThreshold  = 0.75
	defaultMaxResults = 5
)

type Service struct {
	riders riderrepo.Repository
}

func NewService(riders riderrepo.Repository) *Service {
	return &Service{riders: riders}
}

// Suggestion is an existing rider that looks like the one being registered.
type Suggestion struct {
	Rider riderrepo.Rider
	Score float64
}

// SuggestExistingRiders lists existing riders whose names closely resemble
// the given one. It only suggests; registration never merges automatically.
func (s *Service) SuggestExistingRiders(ctx context.Context, firstName, lastName string) ([]Suggestion, error) {
	all, err := s.riders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}

	byID := make(map[string]riderrepo.Rider, len(all))
	candidates := make([]Candidate, 0, len(all))
	for _, r := range all {
		byID[string(r.ID)] = r
		candidates = append(candidates, Candidate{
			ID:        string(r.ID),
			FirstName: r.FirstName,
			LastName:  r.LastName,
		})
	}

	matches := FindFuzzyNameMatches(firstName, lastName, candidates, defaultThreshold, defaultMaxResults)
	suggestions := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, Suggestion{Rider: byID[m.Candidate.ID], Score: m.Score})
	}
	return suggestions, nil
}
