// Package services contains server-side business logic: the authentication
// flow (registration, email verification, login, 2FA), the ticket scan
// state machine with its event-scoped statistics, ticket purchase, and
// event poster storage.
package services

import "context"

// Notifier delivers a code to a user out of band. Calls are fire-and-forget
// from the services' perspective: failures are logged by the caller and
// never abort the issuing flow.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
	Send2FACode(ctx context.Context, email, name, code string) error
}

// TokenIssuer signs and returns an opaque session token. The services make
// no assumption about its internal structure.
type TokenIssuer interface {
	Issue(email, role string) (string, error)
}
