package admin

import (
	"fmt"

	"github.com/charmbracelet/soft-lfs/cmd"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/charmbracelet/soft-lfs/pkg/db/migrate"
	"github.com/spf13/cobra"
)

// Command returns the admin command.
func Command() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrate the server",
	}

	adminCmd.AddCommand(
		migrateCommand(),
		rollbackCommand(),
		versionCommand(),
	)

	return adminCmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate",
		Short:              "Migrate the database to the latest version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			db := db.FromContext(ctx)
			if err := migrate.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migration: %w", err)
			}

			return nil
		},
	}
}

func rollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "rollback",
		Short:              "Rollback the database to the previous version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			db := db.FromContext(ctx)
			if err := migrate.Rollback(ctx, db); err != nil {
				return fmt.Errorf("rollback: %w", err)
			}

			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "db-version",
		Short:              "Print the current database schema version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			db := db.FromContext(ctx)
			version, err := migrate.Version(ctx, db)
			if err != nil {
				return fmt.Errorf("version: %w", err)
			}

			c.Println(version)
			return nil
		},
	}
}
