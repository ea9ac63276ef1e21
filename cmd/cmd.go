package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/soft-lfs/pkg/auth"
	"github.com/charmbracelet/soft-lfs/pkg/batch"
	"github.com/charmbracelet/soft-lfs/pkg/config"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/charmbracelet/soft-lfs/pkg/db/migrate"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/identity/cognito"
	"github.com/charmbracelet/soft-lfs/pkg/identity/database"
	"github.com/charmbracelet/soft-lfs/pkg/storage/s3"
	"github.com/charmbracelet/soft-lfs/pkg/web"
	"github.com/spf13/cobra"
)

func ensureDataPath(cfg *config.Config) error {
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DB.Driver == "" || cfg.DB.DataSource == "" {
		return nil, config.ErrMissingDatabase
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return dbx, nil
}

// InitDBContext opens the user database and stores it in the command
// context. It only needs the data path and database settings.
func InitDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if err := cfg.ResolvePaths(); err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if err := ensureDataPath(cfg); err != nil {
		return err
	}

	dbx, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}

	cmd.SetContext(db.WithContext(ctx, dbx))
	return nil
}

// InitServeContext validates the config and stores every collaborator of the
// HTTP server in the command context: the identity provider, the object
// store backed action generator and the authenticator. The database is only
// opened, and migrated, for the database identity provider.
func InitServeContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := ensureDataPath(cfg); err != nil {
		return err
	}

	var provider identity.Provider
	switch cfg.Identity.Provider {
	case config.ProviderDatabase:
		dbx, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		ctx = db.WithContext(ctx, dbx)
		if err := migrate.Migrate(ctx, dbx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		provider = database.New(ctx, dbx)
	case config.ProviderCognito:
		p, err := cognito.New(ctx, cognito.Options{
			Region:       cfg.Identity.Region,
			UserPoolID:   cfg.Identity.UserPoolID,
			ClientID:     cfg.Identity.ClientID,
			ClientSecret: cfg.Identity.ClientSecret,
		})
		if err != nil {
			return fmt.Errorf("create cognito provider: %w", err)
		}
		provider = p
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Identity.Provider)
	}

	store, err := s3.New(ctx, s3.Config{
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PathStyle:       cfg.Storage.PathStyle,
	})
	if err != nil {
		return fmt.Errorf("create object store: %w", err)
	}

	ctx = identity.WithContext(ctx, provider)
	ctx = auth.WithContext(ctx, auth.NewAuthenticator(provider, cfg.LFS.AnonymousOperations, web.ObserveAuthFailure))
	ctx = batch.WithContext(ctx, batch.NewGenerator(store, cfg.LFS.TTL()))
	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext closes the database context.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}

// UserProvider returns the database identity provider for the database in
// the command context.
func UserProvider(cmd *cobra.Command) (*database.Provider, error) {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx == nil {
		return nil, errors.New("database is not open")
	}
	return database.New(ctx, dbx), nil
}
