package migrate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/soft-lfs/pkg/db"
)

// Keep this in order of execution, oldest to newest.
var migrations = []Migration{
	createUsers,
}

// script holds the up and down statements of a migration for each driver.
type script struct {
	up, down map[string]string
}

func (s script) exec(ctx context.Context, h db.Handler, down bool) error {
	stmts := s.up
	if down {
		stmts = s.down
	}

	driverName := h.DriverName()
	if driverName == driverSQLite3 {
		driverName = driverSQLite
	}

	sqlstr, ok := stmts[driverName]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driverName)
	}

	if _, err := h.ExecContext(ctx, sqlstr); err != nil {
		return err
	}

	return nil
}
