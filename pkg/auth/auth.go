// Package auth decides whether the caller of a batch or credential request
// may proceed.
package auth

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
)

// Failure reasons reported to an Observer.
const (
	ReasonAnonymous     = "anonymous"
	ReasonMissingSecret = "missing_credentials"
	ReasonRejected      = "rejected"
	ReasonProviderError = "provider_error"
)

// Observer is notified of every authentication failure.
type Observer func(reason string)

// Authenticator checks identities against an anonymous allow-list and an
// identity provider. It holds no per-request state.
type Authenticator struct {
	anonymous map[string]struct{}
	provider  identity.Provider
	observe   Observer
}

// NewAuthenticator returns an Authenticator that lets anonymous callers
// perform the given operations and verifies everyone else with provider.
func NewAuthenticator(provider identity.Provider, anonymousOperations []string, observe Observer) *Authenticator {
	anonymous := make(map[string]struct{}, len(anonymousOperations))
	for _, op := range anonymousOperations {
		anonymous[op] = struct{}{}
	}
	if observe == nil {
		observe = func(string) {}
	}
	return &Authenticator{
		anonymous: anonymous,
		provider:  provider,
		observe:   observe,
	}
}

// Authenticate authorizes id for operation. Anonymous identities pass only
// for allow-listed operations; credentialed identities are always verified,
// even when the operation is allow-listed.
//
// It returns proto.ErrAuthorizationRequired, proto.ErrInvalidParameter or
// proto.ErrInvalidUserOrPassword on failure.
func (a *Authenticator) Authenticate(ctx context.Context, id Identity, operation string) (Identity, error) {
	if id.Anonymous {
		if _, ok := a.anonymous[operation]; ok {
			return id, nil
		}
		a.observe(ReasonAnonymous)
		return id, proto.ErrAuthorizationRequired
	}

	return a.verify(ctx, id)
}

// Require authorizes id for an operation that is never allowed anonymously,
// such as changing credentials.
func (a *Authenticator) Require(ctx context.Context, id Identity) (Identity, error) {
	if id.Anonymous {
		a.observe(ReasonAnonymous)
		return id, proto.ErrAuthorizationRequired
	}

	return a.verify(ctx, id)
}

func (a *Authenticator) verify(ctx context.Context, id Identity) (Identity, error) {
	if id.ID == "" || id.Secret == "" {
		a.observe(ReasonMissingSecret)
		return id, proto.ErrInvalidParameter
	}

	if err := a.provider.Verify(ctx, id.ID, id.Secret); err != nil {
		logger := log.FromContext(ctx).WithPrefix("auth")
		if errors.Is(err, identity.ErrInvalidCredentials) {
			a.observe(ReasonRejected)
			logger.Debug("credentials rejected", "user", id.ID, "err", err)
		} else {
			a.observe(ReasonProviderError)
			logger.Error("identity provider error", "user", id.ID, "err", err)
		}
		return id, proto.ErrInvalidUserOrPassword
	}

	id.Authorized = true
	return id, nil
}
