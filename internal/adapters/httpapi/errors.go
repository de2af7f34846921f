package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/lifecycle"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
)

// ErrorResponse is the JSON error envelope every endpoint shares.
type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps the app layer's typed errors onto the envelope;
// anything unrecognized is a 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var resErr *results.Error
	if errors.As(err, &resErr) {
		writeError(w, r, resErr.Status, resErr.Code, resErr.Message, resErr.Details)
		return
	}
	var lcErr *lifecycle.Error
	if errors.As(err, &lcErr) {
		writeError(w, r, lcErr.Status, lcErr.Code, lcErr.Message, nil)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
