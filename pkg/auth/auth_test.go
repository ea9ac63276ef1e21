package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
	"github.com/matryer/is"
)

type fakeProvider struct {
	users map[string]string
	err   error
	calls int
}

func (f *fakeProvider) Verify(_ context.Context, id, secret string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if pw, ok := f.users[id]; ok && pw == secret {
		return nil
	}
	return identity.ErrInvalidCredentials
}

func (f *fakeProvider) SetSecret(context.Context, string, string) error {
	return nil
}

func TestAuthenticateAnonymous(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := &fakeProvider{}
	var reasons []string
	a := NewAuthenticator(p, []string{"download"}, func(r string) { reasons = append(reasons, r) })

	id, err := a.Authenticate(ctx, Identity{Anonymous: true}, "download")
	is.NoErr(err)
	is.True(!id.Authorized)

	_, err = a.Authenticate(ctx, Identity{Anonymous: true}, "upload")
	is.True(errors.Is(err, proto.ErrAuthorizationRequired))
	is.Equal(p.calls, 0) // anonymous callers never reach the provider
	is.Equal(reasons, []string{ReasonAnonymous})
}

func TestAuthenticateEmptyAllowList(t *testing.T) {
	is := is.New(t)
	a := NewAuthenticator(&fakeProvider{}, nil, nil)
	for _, op := range []string{"download", "upload"} {
		_, err := a.Authenticate(context.TODO(), Identity{Anonymous: true}, op)
		is.True(errors.Is(err, proto.ErrAuthorizationRequired))
	}
}

func TestAuthenticateCredentialed(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := &fakeProvider{users: map[string]string{"alice": "s3cret"}}
	a := NewAuthenticator(p, []string{"download"}, nil)

	id, err := a.Authenticate(ctx, Identity{ID: "alice", Secret: "s3cret"}, "upload")
	is.NoErr(err)
	is.True(id.Authorized)
	is.Equal(id.ID, "alice")

	// Credentials are verified even for allow-listed operations.
	_, err = a.Authenticate(ctx, Identity{ID: "alice", Secret: "wrong"}, "download")
	is.True(errors.Is(err, proto.ErrInvalidUserOrPassword))
	is.Equal(p.calls, 2)
}

func TestAuthenticateMissingParts(t *testing.T) {
	for _, id := range []Identity{
		{},
		{ID: "alice"},
		{Secret: "s3cret"},
	} {
		is := is.New(t)
		p := &fakeProvider{}
		a := NewAuthenticator(p, []string{"download", "upload"}, nil)
		_, err := a.Authenticate(context.TODO(), id, "download")
		is.True(errors.Is(err, proto.ErrInvalidParameter))
		is.Equal(p.calls, 0)
	}
}

func TestAuthenticateProviderError(t *testing.T) {
	is := is.New(t)
	var reasons []string
	p := &fakeProvider{err: errors.New("connection refused")}
	a := NewAuthenticator(p, nil, func(r string) { reasons = append(reasons, r) })

	_, err := a.Authenticate(context.TODO(), Identity{ID: "alice", Secret: "s3cret"}, "download")
	is.True(errors.Is(err, proto.ErrInvalidUserOrPassword))
	is.Equal(p.calls, 1) // no retry
	is.Equal(reasons, []string{ReasonProviderError})
}

func TestRequire(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := &fakeProvider{users: map[string]string{"alice": "s3cret"}}
	a := NewAuthenticator(p, []string{"download", "upload"}, nil)

	_, err := a.Require(ctx, Identity{Anonymous: true})
	is.True(errors.Is(err, proto.ErrAuthorizationRequired))

	id, err := a.Require(ctx, Identity{ID: "alice", Secret: "s3cret"})
	is.NoErr(err)
	is.True(id.Authorized)

	_, err = a.Require(ctx, Identity{ID: "alice"})
	is.True(errors.Is(err, proto.ErrInvalidParameter))
}

func TestContext(t *testing.T) {
	is := is.New(t)
	is.True(FromContext(context.TODO()) == nil)
	a := NewAuthenticator(&fakeProvider{}, nil, nil)
	is.Equal(FromContext(WithContext(context.TODO(), a)), a)
}
