package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-lfs/pkg/db/migrate"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
	"github.com/charmbracelet/soft-lfs/pkg/test"
	"github.com/matryer/is"
)

func setup(t *testing.T) *Provider {
	t.Helper()
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrate.Migrate(ctx, dbx); err != nil {
		t.Fatal(err)
	}
	return New(ctx, dbx)
}

func TestPassword(t *testing.T) {
	is := is.New(t)
	hash, err := HashPassword("s3cret")
	is.NoErr(err)
	is.True(hash != "s3cret")
	is.True(VerifyPassword("s3cret", hash))
	is.True(!VerifyPassword("wrong", hash))
	is.True(!VerifyPassword("s3cret", "not a hash"))
}

func TestLongPassword(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := setup(t)

	// Passwords sharing a 60 byte prefix must not collide.
	long := strings.Repeat("a", 60)
	is.NoErr(p.CreateUser(ctx, "alice", long+"1"))
	is.NoErr(p.Verify(ctx, "alice", long+"1"))
	is.True(errors.Is(p.Verify(ctx, "alice", long+"2"), identity.ErrInvalidCredentials))
	is.True(errors.Is(p.Verify(ctx, "alice", long), identity.ErrInvalidCredentials))

	longer := strings.Repeat("b", 200)
	is.NoErr(p.SetSecret(ctx, "alice", longer+"x"))
	is.NoErr(p.Verify(ctx, "alice", longer+"x"))
	is.True(errors.Is(p.Verify(ctx, "alice", longer+"y"), identity.ErrInvalidCredentials))
	is.True(errors.Is(p.Verify(ctx, "alice", long+"1"), identity.ErrInvalidCredentials))

	hash, err := HashPassword(longer)
	is.NoErr(err)
	is.True(VerifyPassword(longer, hash))
	is.True(!VerifyPassword(longer[:72], hash))
}

func TestVerify(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := setup(t)

	is.NoErr(p.CreateUser(ctx, "alice", "s3cret"))
	is.NoErr(p.Verify(ctx, "alice", "s3cret"))
	is.True(errors.Is(p.Verify(ctx, "alice", "wrong"), identity.ErrInvalidCredentials))
	is.True(errors.Is(p.Verify(ctx, "bob", "s3cret"), identity.ErrInvalidCredentials))
}

func TestSetSecret(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := setup(t)

	is.NoErr(p.CreateUser(ctx, "alice", "s3cret"))
	is.NoErr(p.SetSecret(ctx, "alice", "newpass123"))
	is.True(errors.Is(p.Verify(ctx, "alice", "s3cret"), identity.ErrInvalidCredentials))
	is.NoErr(p.Verify(ctx, "alice", "newpass123"))

	is.True(errors.Is(p.SetSecret(ctx, "bob", "newpass123"), proto.ErrUserNotFound))
	is.True(errors.Is(p.SetSecret(ctx, "alice", ""), proto.ErrInvalidParameter))
}

func TestUsers(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	p := setup(t)

	users, err := p.Users(ctx)
	is.NoErr(err)
	is.Equal(len(users), 0)

	is.NoErr(p.CreateUser(ctx, "bob", "pw"))
	is.NoErr(p.CreateUser(ctx, "alice", "pw"))
	is.True(errors.Is(p.CreateUser(ctx, "alice", "pw"), proto.ErrUserExist))
	is.True(errors.Is(p.CreateUser(ctx, "", "pw"), proto.ErrInvalidParameter))
	is.True(errors.Is(p.CreateUser(ctx, "a:b", "pw"), proto.ErrInvalidParameter))
	is.True(errors.Is(p.CreateUser(ctx, "carol", ""), proto.ErrInvalidParameter))

	users, err = p.Users(ctx)
	is.NoErr(err)
	is.Equal(len(users), 2)
	is.Equal(users[0].Username, "alice")
	is.Equal(users[1].Username, "bob")

	u, err := p.User(ctx, "alice")
	is.NoErr(err)
	is.Equal(u.Username, "alice")
	is.True(u.Password != "pw")

	is.NoErr(p.DeleteUser(ctx, "alice"))
	is.True(errors.Is(p.DeleteUser(ctx, "alice"), proto.ErrUserNotFound))
	_, err = p.User(ctx, "alice")
	is.True(errors.Is(err, proto.ErrUserNotFound))
}
