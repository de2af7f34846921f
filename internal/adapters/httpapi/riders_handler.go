package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type suggestRidersRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type riderSuggestionBody struct {
	RiderID   string               `json:"riderId"`
	FirstName string               `json:"firstName"`
	LastName  string               `json:"lastName"`
	Email     *openapi_types.Email `json:"email,omitempty"`
	Score     float64              `json:"score"`
}

type suggestRidersResponse struct {
	Suggestions []riderSuggestionBody `json:"suggestions"`
}

// handleSuggestRiders surfaces possible duplicate rider records during
// registration. The event scoping in the path exists for audit trails; the
// match itself runs against the whole rider directory.
func (s *Server) handleSuggestRiders(w http.ResponseWriter, r *http.Request) {
	var req suggestRidersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.LastName) == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"firstName or lastName is required", map[string]any{"firstName": req.FirstName, "lastName": req.LastName})
		return
	}

	suggestions, err := s.Riders.SuggestExistingRiders(r.Context(), req.FirstName, req.LastName)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	out := make([]riderSuggestionBody, 0, len(suggestions))
	for _, sg := range suggestions {
		body := riderSuggestionBody{
			RiderID:   string(sg.Rider.ID),
			FirstName: sg.Rider.FirstName,
			LastName:  sg.Rider.LastName,
			Score:     sg.Score,
		}
		if sg.Rider.Email != nil {
			email := openapi_types.Email(*sg.Rider.Email)
			body.Email = &email
		}
		out = append(out, body)
	}
	writeJSON(w, http.StatusOK, suggestRidersResponse{Suggestions: out})
}
