package mailer

import (
	"context"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/mailer"
)

// Recorder is an in-memory mailer.Mailer used by tests. It records every
// message and can be told to fail for specific recipients.
type Recorder struct {
	mu     sync.Mutex
	sent   []mailer.Message
	failAt map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{failAt: make(map[string]error)}
}

// FailFor makes Send return err for the given recipient address.
func (r *Recorder) FailFor(to string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt[to] = err
}

func (r *Recorder) Send(ctx context.Context, m mailer.Message) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failAt[m.To]; ok {
		return err
	}
	r.sent = append(r.sent, m)
	return nil
}

// Sent returns a copy of all successfully recorded messages.
func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}
