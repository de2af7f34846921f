package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

type submissionEventBody struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Date        openapi_types.Date `json:"date"`
	DistanceKm  int                `json:"distanceKm"`
	Status      string             `json:"status"`
	ChapterName string             `json:"chapterName,omitempty"`
}

type submissionResultBody struct {
	Status         string     `json:"status"`
	FinishTime     *string    `json:"finishTime,omitempty"`
	GpxURL         *string    `json:"gpxUrl,omitempty"`
	GpxPath        *string    `json:"gpxPath,omitempty"`
	CardPhotoPaths []string   `json:"cardPhotoPaths"`
	Notes          *string    `json:"notes,omitempty"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
}

type submissionViewResponse struct {
	Token     string               `json:"token"`
	Event     submissionEventBody  `json:"event"`
	RiderID   string               `json:"riderId"`
	RiderName string               `json:"riderName"`
	Result    submissionResultBody `json:"result"`
	CanSubmit bool                 `json:"canSubmit"`
}

type submitRequest struct {
	Status     string                    `json:"status"`
	FinishTime nullable.Nullable[string] `json:"finishTime,omitempty"`
	GpxURL     nullable.Nullable[string] `json:"gpxUrl,omitempty"`
	Notes      nullable.Nullable[string] `json:"notes,omitempty"`
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	token := domain.SubmissionToken(chi.URLParam(r, "token"))
	view, err := s.Results.GetResultByToken(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	token := domain.SubmissionToken(chi.URLParam(r, "token"))
	cap, err := s.Results.ResolveCapability(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", nil)
		return
	}

	view, err := cap.Submit(r.Context(), results.SubmitInput{
		Status:     domain.ResultStatus(req.Status),
		FinishTime: optString(req.FinishTime),
		GPXURL:     optString(req.GpxURL),
		Notes:      optString(req.Notes),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

func viewToResponse(v results.SubmissionView) submissionViewResponse {
	return submissionViewResponse{
		Token: string(v.Token),
		Event: submissionEventBody{
			ID:          string(v.EventID),
			Name:        v.EventName,
			Date:        openapi_types.Date{Time: v.EventDate},
			DistanceKm:  v.DistanceKm,
			Status:      string(v.EventStatus),
			ChapterName: v.ChapterName,
		},
		RiderID:   string(v.RiderID),
		RiderName: v.RiderName,
		Result: submissionResultBody{
			Status:         string(v.Status),
			FinishTime:     v.FinishTime,
			GpxURL:         v.GPXURL,
			GpxPath:        v.GPXPath,
			CardPhotoPaths: emptyIfNil(v.CardPhotoPaths),
			Notes:          v.Notes,
			SubmittedAt:    v.SubmittedAt,
		},
		CanSubmit: v.CanSubmit,
	}
}

// optString flattens a JSON tri-state field: absent and explicit null both
// clear the stored value, matching the endpoint's last-write-wins contract.
func optString(n nullable.Nullable[string]) *string {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v := n.MustGet()
	return &v
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
