package results

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/batch"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/mail"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/clock"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/filestore"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/mailer"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
)

type Service struct {
	results       resultrepo.Repository
	registrations registrationrepo.Repository
	riders        riderrepo.Repository
	events        eventrepo.Repository
	chapters      chapterrepo.Repository

	mail  mailer.Mailer
	files filestore.Store
	clk   clock.Clock

	// baseURL is the public origin submission links are built on.
	baseURL string

	newResultID func() domain.ResultID
	newToken    func() domain.SubmissionToken
}

func NewService(
	results resultrepo.Repository,
	registrations registrationrepo.Repository,
	riders riderrepo.Repository,
	events eventrepo.Repository,
	chapters chapterrepo.Repository,
	m mailer.Mailer,
	files filestore.Store,
	clk clock.Clock,
	baseURL string,
) *Service {
	return &Service{
		results:       results,
		registrations: registrations,
		riders:        riders,
		events:        events,
		chapters:      chapters,
		mail:          m,
		files:         files,
		clk:           clk,
		baseURL:       baseURL,
		newResultID: func() domain.ResultID {
			return domain.ResultID(uuid.NewString())
		},
		newToken: newSubmissionToken,
	}
}

// SetNewResultIDForTest overrides result ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewResultIDForTest(fn func() domain.ResultID) {
	if fn != nil {
		s.newResultID = fn
	}
}

// SetNewTokenForTest overrides token generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTokenForTest(fn func() domain.SubmissionToken) {
	if fn != nil {
		s.newToken = fn
	}
}

func newSubmissionToken() domain.SubmissionToken {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("read random: %v", err))
	}
	return domain.SubmissionToken(hex.EncodeToString(b[:]))
}

// invite is one rider owed a pending result and a submission-request email.
type invite struct {
	registration registrationrepo.Registration
	rider        riderrepo.Rider
	token        domain.SubmissionToken
}

// CollectForEvent creates pending results for every registered rider with an
// email and no existing result, then dispatches submission-request emails.
//
// Re-invocation is idempotent with respect to result rows: riders already
// covered by a result are never invited again. Email failures are recorded
// per rider and do not stop the run.
func (s *Service) CollectForEvent(ctx context.Context, ev eventrepo.Event) (CollectionReport, error) {
	report := CollectionReport{EventID: ev.ID}

	regs, err := s.registrations.ListActiveByEvent(ctx, ev.ID)
	if err != nil {
		return report, fmt.Errorf("list registrations: %w", err)
	}
	existing, err := s.results.ListByEvent(ctx, ev.ID)
	if err != nil {
		return report, fmt.Errorf("list results: %w", err)
	}
	covered := make(map[domain.RiderID]bool, len(existing))
	for _, res := range existing {
		covered[res.RiderID] = true
	}

	var invites []invite
	for _, reg := range regs {
		if covered[reg.RiderID] {
			continue
		}
		rd, err := s.riders.GetByID(ctx, reg.RiderID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("rider %s: %v", reg.RiderID, err))
			continue
		}
		if rd.Email == nil || *rd.Email == "" {
			continue
		}
		invites = append(invites, invite{registration: reg, rider: rd, token: s.newToken()})
	}

	created := batch.Map(invites, func(iv invite) error {
		if err := s.createPendingResult(ctx, ev, iv); err != nil {
			return fmt.Errorf("%s %s: create result: %w", iv.rider.FirstName, iv.rider.LastName, err)
		}
		return nil
	})
	report.ResultsCreated = len(created.Succeeded)
	report.Errors = append(report.Errors, created.Errors()...)

	sent := batch.Map(created.Succeeded, func(iv invite) error {
		if err := s.sendSubmissionRequest(ctx, ev, iv); err != nil {
			return fmt.Errorf("%s %s: send email: %w", iv.rider.FirstName, iv.rider.LastName, err)
		}
		return nil
	})
	report.EmailsSent = len(sent.Succeeded)
	report.Errors = append(report.Errors, sent.Errors()...)

	return report, nil
}

func (s *Service) createPendingResult(ctx context.Context, ev eventrepo.Event, iv invite) error {
	now := s.clk.Now()
	res := resultrepo.Result{
		ID:         s.newResultID(),
		EventID:    ev.ID,
		RiderID:    iv.rider.ID,
		Status:     domain.ResultStatusPending,
		Token:      iv.token,
		Season:     ev.Date.Year(),
		DistanceKm: ev.DistanceKm,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.results.Create(ctx, res); err != nil {
		// A concurrent run may have won the (event, rider) race; that rider
		// is covered either way.
		if errors.Is(err, resultrepo.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) sendSubmissionRequest(ctx context.Context, ev eventrepo.Event, iv invite) error {
	chapterName := ""
	if ch, err := s.chapters.GetByID(ctx, ev.ChapterID); err == nil {
		chapterName = ch.Name
	}
	riderName := domain.NormalizeHumanName(iv.rider.FirstName + " " + iv.rider.LastName)

	subject, text, html, err := mail.RenderSubmissionRequest(mail.SubmissionRequestData{
		RiderName:   riderName,
		EventName:   ev.Name,
		EventDate:   ev.Date,
		DistanceKm:  ev.DistanceKm,
		ChapterName: chapterName,
		SubmitURL:   fmt.Sprintf("%s/results/submit/%s", s.baseURL, iv.token),
	})
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.Message{
		To:       *iv.rider.Email,
		ToName:   riderName,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	})
}

// GetResultByToken loads the submission view for a token; unknown tokens are
// a generic not-found.
func (s *Service) GetResultByToken(ctx context.Context, token domain.SubmissionToken) (SubmissionView, error) {
	res, ev, err := s.loadByToken(ctx, token)
	if err != nil {
		return SubmissionView{}, err
	}
	return s.buildView(ctx, res, ev)
}

func (s *Service) loadByToken(ctx context.Context, token domain.SubmissionToken) (resultrepo.Result, eventrepo.Event, error) {
	if token == "" {
		return resultrepo.Result{}, eventrepo.Event{}, notFound()
	}
	res, err := s.results.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, resultrepo.ErrNotFound) {
			return resultrepo.Result{}, eventrepo.Event{}, notFound()
		}
		return resultrepo.Result{}, eventrepo.Event{}, err
	}
	ev, err := s.events.GetByID(ctx, res.EventID)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return resultrepo.Result{}, eventrepo.Event{}, notFound()
		}
		return resultrepo.Result{}, eventrepo.Event{}, err
	}
	return res, ev, nil
}

func (s *Service) buildView(ctx context.Context, res resultrepo.Result, ev eventrepo.Event) (SubmissionView, error) {
	rd, err := s.riders.GetByID(ctx, res.RiderID)
	if err != nil {
		return SubmissionView{}, err
	}
	chapterName := ""
	if ch, err := s.chapters.GetByID(ctx, ev.ChapterID); err == nil {
		chapterName = ch.Name
	}
	return SubmissionView{
		Token:          res.Token,
		EventID:        ev.ID,
		EventName:      ev.Name,
		EventDate:      ev.Date,
		DistanceKm:     ev.DistanceKm,
		EventStatus:    ev.Status,
		ChapterName:    chapterName,
		RiderID:        rd.ID,
		RiderName:      domain.NormalizeHumanName(rd.FirstName + " " + rd.LastName),
		Status:         res.Status,
		FinishTime:     res.FinishTime,
		GPXURL:         res.GPXURL,
		GPXPath:        res.GPXPath,
		CardPhotoPaths: res.CardPhotoPaths,
		Notes:          res.Notes,
		SubmittedAt:    res.SubmittedAt,
		CanSubmit:      ev.Status != domain.EventStatusSubmitted,
	}, nil
}

func (s *Service) submit(ctx context.Context, res resultrepo.Result, ev eventrepo.Event, in SubmitInput) (SubmissionView, error) {
	if ev.Status == domain.EventStatusSubmitted {
		return SubmissionView{}, alreadySubmittedToACP()
	}
	if !domain.IsSubmittableResultStatus(in.Status) {
		return SubmissionView{}, &Error{
			Status:  422,
			Code:    "INVALID_STATUS",
			Message: "status must be FINISHED, DNF, or DNS",
			Details: map[string]any{"status": string(in.Status)},
		}
	}
	if in.Status == domain.ResultStatusFinished {
		if in.FinishTime == nil || !domain.ValidFinishTime(*in.FinishTime) {
			return SubmissionView{}, &Error{
				Status:  422,
				Code:    "INVALID_FINISH_TIME_FORMAT",
				Message: "finish time must look like 13:30 (hours:minutes)",
			}
		}
	} else {
		// Elapsed time is meaningless for DNF/DNS.
		in.FinishTime = nil
	}

	now := s.clk.Now()
	res.Status = in.Status
	res.FinishTime = cloneStringPtr(in.FinishTime)
	res.Notes = cloneStringPtr(in.Notes)
	if in.GPXURL != nil && *in.GPXURL == "" {
		in.GPXURL = nil
	}
	res.GPXURL = cloneStringPtr(in.GPXURL)
	res.SubmittedAt = &now
	res.UpdatedAt = now

	if err := s.results.Save(ctx, res); err != nil {
		return SubmissionView{}, err
	}
	return s.buildView(ctx, res, ev)
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
