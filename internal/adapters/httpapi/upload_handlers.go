package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// uploadMemoryLimit caps the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const uploadMemoryLimit = 4 << 20

type attachFileResponse struct {
	FileType string `json:"fileType"`
	Path     string `json:"path"`
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	token := domain.SubmissionToken(chi.URLParam(r, "token"))
	cap, err := s.Results.ResolveCapability(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "expected a multipart form", nil)
		return
	}
	fileType := results.FileType(r.FormValue("fileType"))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "missing file part", nil)
		return
	}
	defer file.Close()

	key, err := cap.AttachFile(r.Context(), results.AttachFileInput{
		FileType:    fileType,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachFileResponse{
		FileType: string(fileType),
		Path:     key,
	})
}

func (s *Server) handleDetachFile(w http.ResponseWriter, r *http.Request) {
	token := domain.SubmissionToken(chi.URLParam(r, "token"))
	cap, err := s.Results.ResolveCapability(r.Context(), token)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	fileType := results.FileType(chi.URLParam(r, "fileType"))
	if err := cap.DetachFile(r.Context(), fileType); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
