package mailer

import "context"

// Message is a fully rendered email. Rendering (including HTML escaping of
// user-controlled strings) happens before a Message reaches a Mailer.
type Message struct {
	To     string
	ToName string

	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer dispatches a single message through the transactional-email
// collaborator. Transport policy (retries, queues) lives behind the adapter.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}
