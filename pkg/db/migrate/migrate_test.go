package migrate

import (
	"context"
	"testing"

	"github.com/charmbracelet/soft-lfs/pkg/test"
	"github.com/matryer/is"
)

func TestMigrate(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(0))

	is.NoErr(Migrate(ctx, dbx))
	v, err = Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(len(migrations)))

	// Running again is a no-op.
	is.NoErr(Migrate(ctx, dbx))

	_, err = dbx.ExecContext(ctx, "INSERT INTO users (username, password, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)", "alice", "x")
	is.NoErr(err)
}

func TestRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.True(Rollback(ctx, dbx) != nil) // nothing to roll back yet

	is.NoErr(Migrate(ctx, dbx))
	is.NoErr(Rollback(ctx, dbx))

	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(0))

	var n int
	err = dbx.GetContext(ctx, &n, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name='users'")
	is.NoErr(err)
	is.Equal(n, 0)
}
