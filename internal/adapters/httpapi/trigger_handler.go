package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/lifecycle"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// sweepResponse is the trigger endpoint's JSON body.
type sweepResponse struct {
	Success         bool     `json:"success"`
	Checked         int      `json:"checked"`
	Completed       int      `json:"completed"`
	CompletedEvents []string `json:"completedEvents"`
	Errors          []string `json:"errors,omitempty"`
}

func (s *Server) handleCompleteEvents(w http.ResponseWriter, r *http.Request) {
	// An unconfigured secret is a deployment fault, not a client error.
	if s.TriggerSecret == "" {
		writeError(w, r, http.StatusInternalServerError, "TRIGGER_NOT_CONFIGURED",
			"trigger secret is not configured", nil)
		return
	}
	if !authorizedTrigger(r, s.TriggerSecret) {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid trigger credentials", nil)
		return
	}

	report, err := s.Lifecycle.CompleteExpiredEvents(r.Context())
	if err != nil {
		if errors.Is(err, lifecycle.ErrSweepInProgress) {
			writeError(w, r, http.StatusConflict, "SWEEP_IN_PROGRESS",
				"a sweep is already running", nil)
			return
		}
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		Success:         true,
		Checked:         report.Checked,
		Completed:       report.Completed,
		CompletedEvents: eventIDStrings(report.CompletedEvents),
		Errors:          report.Errors,
	})
}

func authorizedTrigger(r *http.Request, secret string) bool {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return false
	}
	given := strings.TrimPrefix(auth, prefix)
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}

func eventIDStrings(ids []domain.EventID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
