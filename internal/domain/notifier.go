package domain

import "context"

// Notifier delivers one human-readable message per call. Implementations
// open a transport session, deliver, and close; failures come back as a
// *TransportError and are never retried.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
	Channel() string
}
