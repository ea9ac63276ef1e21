// Package migrate provides database migration functionality.
package migrate

import (
	"context"

	"github.com/charmbracelet/soft-lfs/pkg/db"
)

const (
	createUsersName    = "create users"
	createUsersVersion = 1
)

var createUsersScript = script{
	up: map[string]string{
		driverSQLite: `CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				password TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL
			);`,
		driverPostgres: `CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				password TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL
			);`,
	},
	down: map[string]string{
		driverSQLite:   `DROP TABLE IF EXISTS users;`,
		driverPostgres: `DROP TABLE IF EXISTS users;`,
	},
}

var createUsers = Migration{
	Version: createUsersVersion,
	Name:    createUsersName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return createUsersScript.exec(ctx, tx, false)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return createUsersScript.exec(ctx, tx, true)
	},
}
