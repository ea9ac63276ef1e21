// Package identity defines the capability the server needs from an external
// identity provider: checking a user's secret and replacing it.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned by a Provider when the id and secret do
// not match a known user. Any other error returned by a Provider is a
// transport or backend failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Provider verifies and updates user credentials.
type Provider interface {
	// Verify checks that secret is the current secret of the user id.
	Verify(ctx context.Context, id, secret string) error

	// SetSecret permanently replaces the secret of the user id.
	SetSecret(ctx context.Context, id, newSecret string) error
}

// ContextKey is the context key for the identity provider.
var ContextKey = &struct{ string }{"identity"}

// FromContext returns the identity provider from the context.
func FromContext(ctx context.Context) Provider {
	if p, ok := ctx.Value(ContextKey).(Provider); ok {
		return p
	}

	return nil
}

// WithContext returns a new context with the identity provider.
func WithContext(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, ContextKey, p)
}
