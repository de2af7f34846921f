package results

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
)

func setupCapability(t *testing.T) (*fixture, Capability) {
	t.Helper()
	f := newFixture(t)
	ev := f.event(t, domain.EventStatusCompleted)
	f.register(t, "r-1", "Ann", "Alpha", strptr("ann@example.com"))
	if _, err := f.svc.CollectForEvent(context.Background(), ev); err != nil {
		t.Fatalf("collect: %v", err)
	}
	cap, err := f.svc.ResolveCapability(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("ResolveCapability: %v", err)
	}
	return f, cap
}

func gpxUpload(body string) AttachFileInput {
	return AttachFileInput{
		FileType:    FileTypeGPX,
		Filename:    "ride.gpx",
		ContentType: "application/gpx+xml",
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func TestAttachGPX(t *testing.T) {
	t.Parallel()
	f, cap := setupCapability(t)

	key, err := cap.AttachFile(context.Background(), gpxUpload("<gpx/>"))
	if err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	if !strings.HasPrefix(key, "ev-1/r-1/gpx-") || !strings.HasSuffix(key, ".gpx") {
		t.Fatalf("key = %q", key)
	}
	if !f.files.Has(key) {
		t.Fatalf("blob %q not stored", key)
	}

	view, err := cap.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.GPXPath == nil || *view.GPXPath != key {
		t.Fatalf("view GPXPath = %v, want %q", view.GPXPath, key)
	}
}

func TestAttachCardPhotoKeepsExtension(t *testing.T) {
	t.Parallel()
	f, cap := setupCapability(t)

	in := AttachFileInput{
		FileType:    FileTypeCardPhoto,
		Filename:    "card.PNG",
		ContentType: "image/png; charset=binary",
		Size:        4,
		Content:     strings.NewReader("\x89PNG"),
	}
	key, err := cap.AttachFile(context.Background(), in)
	if err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key = %q, want .png suffix", key)
	}

	// A second photo accumulates rather than replaces.
	in2 := AttachFileInput{
		FileType:    FileTypeCardPhoto,
		Filename:    "card2.jpeg",
		ContentType: "image/jpeg",
		Size:        3,
		Content:     strings.NewReader("jpg"),
	}
	if _, err := cap.AttachFile(context.Background(), in2); err != nil {
		t.Fatalf("second AttachFile: %v", err)
	}
	view, err := cap.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.CardPhotoPaths) != 2 {
		t.Fatalf("photos=%d, want 2", len(view.CardPhotoPaths))
	}
	if f.files.Len() != 2 {
		t.Fatalf("blobs=%d, want 2", f.files.Len())
	}
}

func TestAttachFileRejectsBadContentType(t *testing.T) {
	t.Parallel()
	_, cap := setupCapability(t)

	in := gpxUpload("MZ")
	in.ContentType = "application/octet-stream"
	_, err := cap.AttachFile(context.Background(), in)
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Code != "UPLOAD_REJECTED" || appErr.Status != 422 {
		t.Fatalf("err=%v, want UPLOAD_REJECTED 422", err)
	}

	photo := AttachFileInput{
		FileType:    FileTypeCardPhoto,
		Filename:    "card.gif",
		ContentType: "image/gif",
		Size:        3,
		Content:     strings.NewReader("GIF"),
	}
	if _, err := cap.AttachFile(context.Background(), photo); !errors.As(err, &appErr) || appErr.Code != "UPLOAD_REJECTED" {
		t.Fatalf("gif err=%v, want UPLOAD_REJECTED", err)
	}
}

func TestAttachFileRejectsBadSize(t *testing.T) {
	t.Parallel()
	_, cap := setupCapability(t)

	in := gpxUpload("<gpx/>")
	in.Size = maxUploadBytes + 1
	var appErr *Error
	if _, err := cap.AttachFile(context.Background(), in); !errors.As(err, &appErr) || appErr.Code != "UPLOAD_REJECTED" {
		t.Fatalf("oversize err=%v, want UPLOAD_REJECTED", err)
	}
	in = gpxUpload("")
	in.Size = 0
	if _, err := cap.AttachFile(context.Background(), in); !errors.As(err, &appErr) || appErr.Code != "UPLOAD_REJECTED" {
		t.Fatalf("empty err=%v, want UPLOAD_REJECTED", err)
	}
}

func TestAttachFileRejectedAfterACPSubmission(t *testing.T) {
	t.Parallel()
	f, cap := setupCapability(t)

	ev, err := f.events.GetByID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	ev.Status = domain.EventStatusSubmitted
	if err := f.events.Save(context.Background(), ev); err != nil {
		t.Fatalf("save event: %v", err)
	}

	var appErr *Error
	if _, err := cap.AttachFile(context.Background(), gpxUpload("<gpx/>")); !errors.As(err, &appErr) || appErr.Code != "ALREADY_SUBMITTED_TO_ACP" {
		t.Fatalf("err=%v, want ALREADY_SUBMITTED_TO_ACP", err)
	}
	if err := cap.DetachFile(context.Background(), FileTypeGPX); !errors.As(err, &appErr) || appErr.Code != "ALREADY_SUBMITTED_TO_ACP" {
		t.Fatalf("detach err=%v, want ALREADY_SUBMITTED_TO_ACP", err)
	}
}

func TestDetachFile(t *testing.T) {
	t.Parallel()
	f, cap := setupCapability(t)

	key, err := cap.AttachFile(context.Background(), gpxUpload("<gpx/>"))
	if err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	if err := cap.DetachFile(context.Background(), FileTypeGPX); err != nil {
		t.Fatalf("DetachFile: %v", err)
	}
	if f.files.Has(key) {
		t.Fatalf("blob %q still stored after detach", key)
	}
	view, err := cap.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.GPXPath != nil {
		t.Fatalf("view still references %q", *view.GPXPath)
	}

	// Detaching again is a not-found.
	var appErr *Error
	if err := cap.DetachFile(context.Background(), FileTypeGPX); !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Fatalf("second detach err=%v, want NOT_FOUND", err)
	}
}

// failingSaveRepo wraps a result repository and fails every Save.
type failingSaveRepo struct {
	resultrepo.Repository
}

func (r failingSaveRepo) Save(ctx context.Context, res resultrepo.Result) error {
	return errors.New("disk on fire")
}

func TestAttachFileCompensatesOnSaveFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ev := f.event(t, domain.EventStatusCompleted)
	f.register(t, "r-1", "Ann", "Alpha", strptr("ann@example.com"))
	if _, err := f.svc.CollectForEvent(context.Background(), ev); err != nil {
		t.Fatalf("collect: %v", err)
	}
	f.svc.results = failingSaveRepo{Repository: f.results}

	cap, err := f.svc.ResolveCapability(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("ResolveCapability: %v", err)
	}
	if _, err := cap.AttachFile(context.Background(), gpxUpload("<gpx/>")); err == nil {
		t.Fatalf("expected Save failure to surface")
	}
	if f.files.Len() != 0 {
		t.Fatalf("blobs=%d, want 0 after compensation", f.files.Len())
	}
}
