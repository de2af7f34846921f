package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	memchapters "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/chapterrepo"
	memclock "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/clock"
	memevents "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/eventrepo"
	memfiles "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/filestore"
	memmail "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/mailer"
	memregs "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/registrationrepo"
	memresults "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/resultrepo"
	memriders "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/riderrepo"
	memroutes "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/routerepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/calendar"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/lifecycle"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/riders"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	chapterport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	eventport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	registrationport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
	riderport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
	routeport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

const testSecret = "sweep-secret"

type apiFixture struct {
	handler http.Handler
	server  *Server

	events  *memevents.Repo
	results *memresults.Repo
	riders  *memriders.Repo
	regs    *memregs.Repo
	files   *memfiles.Store
	mail    *memmail.Recorder
	clk     *memclock.ManualClock

	resultsSvc *results.Service
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	f := &apiFixture{
		events:  memevents.NewRepo(),
		results: memresults.NewRepo(),
		riders:  memriders.NewRepo(),
		regs:    memregs.NewRepo(),
		files:   memfiles.NewStore(),
		mail:    memmail.NewRecorder(),
		clk:     memclock.NewManualClock(time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC)),
	}
	chapters := memchapters.NewRepo()
	routes := memroutes.NewRepo()

	if err := chapters.Create(ctx, chapterport.Chapter{
		ID: "ch-1", Name: "Seattle", ContactEmail: "vp@cascaderando.org", Timezone: "UTC",
	}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	loc := "Marymoor Park"
	routeID := domain.RouteID("rt-1")
	if err := routes.Create(ctx, routeport.Route{
		ID:         routeID,
		Name:       "Snohomish 200",
		DistanceKm: 200,
		Controls: []domain.Control{
			{Name: "Granite Falls", DistanceKm: 55},
			{Name: "Darrington", DistanceKm: 100},
		},
	}); err != nil {
		t.Fatalf("create route: %v", err)
	}
	if err := f.events.Create(ctx, eventport.Event{
		ID:            "ev-1",
		ChapterID:     "ch-1",
		RouteID:       &routeID,
		Name:          "Spring 200",
		Type:          domain.EventTypeBrevet,
		DistanceKm:    200,
		Date:          time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartMinutes:  480,
		StartLocation: &loc,
		Status:        domain.EventStatusScheduled,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	email := "ann@example.com"
	if err := f.riders.Create(ctx, riderport.Rider{
		ID: "r-1", FirstName: "Ann", LastName: "Alpha", Email: &email,
	}); err != nil {
		t.Fatalf("create rider: %v", err)
	}
	if err := f.regs.Create(ctx, registrationport.Registration{
		ID: "reg-1", EventID: "ev-1", RiderID: "r-1",
		Status: domain.RegistrationStatusRegistered,
	}); err != nil {
		t.Fatalf("create registration: %v", err)
	}

	f.resultsSvc = results.NewService(f.results, f.regs, f.riders, f.events, chapters,
		f.mail, f.files, f.clk, "https://rides.cascaderando.org")
	var tokenSeq int
	f.resultsSvc.SetNewTokenForTest(func() domain.SubmissionToken {
		tokenSeq++
		return domain.SubmissionToken(fmt.Sprintf("token-%d", tokenSeq))
	})

	lifecycleSvc := lifecycle.NewService(f.events, chapters, f.resultsSvc, f.clk)
	calendarSvc := calendar.NewService(chapters, f.events, f.clk, "https://rides.cascaderando.org")
	riderSvc := riders.NewService(f.riders)

	f.server = &Server{
		Lifecycle:       lifecycleSvc,
		Results:         f.resultsSvc,
		Calendar:        calendarSvc,
		Riders:          riderSvc,
		Events:          f.events,
		Routes:          routes,
		Chapters:        chapters,
		Registrations:   f.regs,
		RiderRepo:       f.riders,
		TriggerSecret:   testSecret,
		ExtraBlankCards: 0,
	}
	f.handler = NewRouter(f.server)
	return f
}

// collect runs result collection for ev-1, handing out token-1 to Ann.
func (f *apiFixture) collect(t *testing.T) {
	t.Helper()
	ev, err := f.events.GetByID(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if _, err := f.resultsSvc.CollectForEvent(context.Background(), ev); err != nil {
		t.Fatalf("collect: %v", err)
	}
}

func (f *apiFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestTriggerRequiresConfiguredSecret(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.server.TriggerSecret = ""

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/complete-events", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := f.do(t, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
}

func TestTriggerRejectsBadSecret(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	for _, auth := range []string{"", "Bearer wrong", "Basic " + testSecret} {
		req := httptest.NewRequest(http.MethodPost, "/internal/tasks/complete-events", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := f.do(t, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("auth %q: status=%d, want 401", auth, rec.Code)
		}
	}
}

func TestTriggerSweepCompletesEventAndReports(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	// 22:00 is past the 21:30 closing time of the 200 km event.
	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/complete-events", nil)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success         bool     `json:"success"`
		Checked         int      `json:"checked"`
		Completed       int      `json:"completed"`
		CompletedEvents []string `json:"completedEvents"`
	}
	decodeJSON(t, rec, &resp)
	if !resp.Success || resp.Checked != 1 || resp.Completed != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.CompletedEvents) != 1 || resp.CompletedEvents[0] != "ev-1" {
		t.Fatalf("completedEvents = %v", resp.CompletedEvents)
	}

	// The sweep also collected: Ann got her submission email.
	if len(f.mail.Sent()) != 1 {
		t.Fatalf("sent=%d, want 1", len(f.mail.Sent()))
	}
	ev, _ := f.events.GetByID(context.Background(), "ev-1")
	if ev.Status != domain.EventStatusCompleted {
		t.Fatalf("event status = %s", ev.Status)
	}
}

func TestGetSubmission(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.collect(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/results/submit/token-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp submissionViewResponse
	decodeJSON(t, rec, &resp)
	if resp.Event.Name != "Spring 200" || resp.RiderName != "Ann Alpha" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Result.Status != string(domain.ResultStatusPending) || !resp.CanSubmit {
		t.Fatalf("result = %+v canSubmit=%v", resp.Result, resp.CanSubmit)
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/results/submit/bogus", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bogus token status=%d, want 404", rec.Code)
	}
}

func TestSubmitResultEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.collect(t)

	body := `{"status":"FINISHED","finishTime":"13:30","gpxUrl":"https://ridewithgps.com/trips/1","notes":"windy"}`
	req := httptest.NewRequest(http.MethodPost, "/results/submit/token-1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp submissionViewResponse
	decodeJSON(t, rec, &resp)
	if resp.Result.Status != "FINISHED" || resp.Result.FinishTime == nil || *resp.Result.FinishTime != "13:30" {
		t.Fatalf("result = %+v", resp.Result)
	}

	// Invalid finish time maps to the 422 envelope.
	req = httptest.NewRequest(http.MethodPost, "/results/submit/token-1", strings.NewReader(`{"status":"FINISHED","finishTime":"13.30"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = f.do(t, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rec.Code)
	}
	var errResp ErrorResponse
	decodeJSON(t, rec, &errResp)
	if errResp.Error.Code != "INVALID_FINISH_TIME_FORMAT" {
		t.Fatalf("code = %q", errResp.Error.Code)
	}

	// Explicit null clears the GPX link (last write wins).
	req = httptest.NewRequest(http.MethodPost, "/results/submit/token-1", strings.NewReader(`{"status":"FINISHED","finishTime":"13:30","gpxUrl":null}`))
	req.Header.Set("Content-Type", "application/json")
	rec = f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	// Unmarshal leaves fields absent from the JSON untouched, so reset the
	// reused struct before decoding.
	resp = submissionViewResponse{}
	decodeJSON(t, rec, &resp)
	if resp.Result.GpxURL != nil {
		t.Fatalf("gpxUrl = %v, want cleared", *resp.Result.GpxURL)
	}
}

func multipartUpload(t *testing.T, fileType, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileType", fileType); err != nil {
		t.Fatalf("write field: %v", err)
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAttachAndDetachFileEndpoints(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.collect(t)

	body, contentType := multipartUpload(t, "gpx", "ride.gpx", "application/gpx+xml", "<gpx/>")
	req := httptest.NewRequest(http.MethodPost, "/results/submit/token-1/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp attachFileResponse
	decodeJSON(t, rec, &resp)
	if resp.FileType != "gpx" || !strings.HasSuffix(resp.Path, ".gpx") {
		t.Fatalf("resp = %+v", resp)
	}
	if !f.files.Has(resp.Path) {
		t.Fatalf("blob %q not stored", resp.Path)
	}

	// Wrong MIME type is a 422.
	body, contentType = multipartUpload(t, "gpx", "ride.bin", "application/octet-stream", "MZ")
	req = httptest.NewRequest(http.MethodPost, "/results/submit/token-1/files", body)
	req.Header.Set("Content-Type", contentType)
	rec = f.do(t, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rec.Code)
	}
	var errResp ErrorResponse
	decodeJSON(t, rec, &errResp)
	if errResp.Error.Code != "UPLOAD_REJECTED" {
		t.Fatalf("code = %q", errResp.Error.Code)
	}

	rec = f.do(t, httptest.NewRequest(http.MethodDelete, "/results/submit/token-1/files/gpx", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("detach status=%d body=%s", rec.Code, rec.Body.String())
	}
	if f.files.Len() != 0 {
		t.Fatalf("blobs=%d, want 0", f.files.Len())
	}
}

func TestCalendarFeedEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/chapters/ch-1/calendar.ics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("content-type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY:Spring 200") {
		t.Fatalf("feed missing event:\n%s", rec.Body.String())
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/chapters/nope/calendar.ics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chapter status=%d, want 404", rec.Code)
	}
}

func TestControlCardsEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/events/ev-1/control-cards", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp cardSetResponse
	decodeJSON(t, rec, &resp)
	if resp.AllowedTime != "13:30" {
		t.Fatalf("allowedTime = %q", resp.AllowedTime)
	}
	if len(resp.Sheets) != 1 {
		t.Fatalf("sheets = %d, want 1", len(resp.Sheets))
	}
	front := resp.Sheets[0].Front
	if front[0].RiderName != "Ann Alpha" || !front[1].Blank {
		t.Fatalf("front = %+v", front)
	}
	var rows []controlRowBody
	for _, col := range resp.Sheets[0].Back {
		rows = append(rows, col...)
	}
	// Implicit start and finish bracket the two route controls.
	if len(rows) != 4 || rows[0].DistanceKm != 0 || rows[len(rows)-1].DistanceKm != 200 {
		t.Fatalf("rows = %+v", rows)
	}

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/events/nope/control-cards", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event status=%d, want 404", rec.Code)
	}
}

func TestSuggestRidersEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/events/ev-1/riders/suggest",
		strings.NewReader(`{"firstName":"Anne","lastName":"Alpha"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp suggestRidersResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].RiderID != "r-1" {
		t.Fatalf("suggestions = %+v", resp.Suggestions)
	}

	req = httptest.NewRequest(http.MethodPost, "/events/ev-1/riders/suggest", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec = f.do(t, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name status=%d, want 422", rec.Code)
	}
}
