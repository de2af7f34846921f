package results

import (
	"context"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/domain"
)

// Capability is the write surface a submission token grants: view and mutate
// exactly one result. Handlers resolve a token into a Capability and work
// through it, so the credential never exposes broader queries.
type Capability struct {
	svc      *Service
	resultID domain.ResultID
	token    domain.SubmissionToken
}

// ResolveCapability exchanges a token for its capability. Unknown tokens
// fail with a generic not-found.
func (s *Service) ResolveCapability(ctx context.Context, token domain.SubmissionToken) (Capability, error) {
	res, _, err := s.loadByToken(ctx, token)
	if err != nil {
		return Capability{}, err
	}
	return Capability{svc: s, resultID: res.ID, token: res.Token}, nil
}

func (c Capability) View(ctx context.Context) (SubmissionView, error) {
	res, ev, err := c.svc.loadByToken(ctx, c.token)
	if err != nil {
		return SubmissionView{}, err
	}
	return c.svc.buildView(ctx, res, ev)
}

// Submit overwrites the result with the rider's report (last write wins).
// Mutation is rejected once the event has been submitted to ACP.
func (c Capability) Submit(ctx context.Context, in SubmitInput) (SubmissionView, error) {
	// Re-load at write time: the event may have been submitted to ACP since
	// the capability was resolved.
	res, ev, err := c.svc.loadByToken(ctx, c.token)
	if err != nil {
		return SubmissionView{}, err
	}
	return c.svc.submit(ctx, res, ev, in)
}

// AttachFile stores one evidence file and records it on the result.
func (c Capability) AttachFile(ctx context.Context, in AttachFileInput) (string, error) {
	res, ev, err := c.svc.loadByToken(ctx, c.token)
	if err != nil {
		return "", err
	}
	return c.svc.attachFile(ctx, res, ev, in)
}

// DetachFile removes the stored evidence of the given type.
func (c Capability) DetachFile(ctx context.Context, ft FileType) error {
	res, ev, err := c.svc.loadByToken(ctx, c.token)
	if err != nil {
		return err
	}
	return c.svc.detachFile(ctx, res, ev, ft)
}
