// Package database implements identity.Provider on top of a SQL users table
// with bcrypt password hashes.
package database

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/charmbracelet/soft-lfs/pkg/db/models"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
	"golang.org/x/crypto/bcrypt"
)

const saltySalt = "salty-soft-lfs"

// prehash folds the salted password into a fixed 44 byte input so bcrypt
// never truncates at its 72 byte limit.
func prehash(password string) []byte {
	mac := hmac.New(sha256.New, []byte(saltySalt))
	mac.Write([]byte(password)) // nolint: errcheck
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// HashPassword hashes the password using bcrypt.
func HashPassword(password string) (string, error) {
	crypt, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(crypt), nil
}

// VerifyPassword verifies the password against the hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	return err == nil
}

// Provider is a database backed identity.Provider.
type Provider struct {
	db     *db.DB
	logger *log.Logger
}

var _ identity.Provider = (*Provider)(nil)

// New returns a Provider using dbx. The schema must already be migrated.
func New(ctx context.Context, dbx *db.DB) *Provider {
	return &Provider{
		db:     dbx,
		logger: log.FromContext(ctx).WithPrefix("identity.database"),
	}
}

// ValidateUsername returns an error if the username is not usable as a
// basic auth user id.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username cannot be empty", proto.ErrInvalidParameter)
	}
	if strings.ContainsAny(username, ": \t\r\n") {
		return fmt.Errorf("%w: username cannot contain colons or whitespace", proto.ErrInvalidParameter)
	}
	return nil
}

// User returns the user with the given username.
func (p *Provider) User(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := p.db.GetContext(ctx, &u, p.db.Rebind("SELECT * FROM users WHERE username = ?"), username)
	if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
		return u, proto.ErrUserNotFound
	}
	return u, db.WrapError(err)
}

// Users returns all users ordered by username.
func (p *Provider) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := p.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY username ASC")
	return users, db.WrapError(err)
}

// CreateUser creates a user with the given password.
func (p *Provider) CreateUser(ctx context.Context, username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", proto.ErrInvalidParameter)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, p.db.Rebind(`INSERT INTO users (username, password, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)`), username, hash)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return proto.ErrUserExist
	}
	if err != nil {
		return db.WrapError(err)
	}

	p.logger.Info("user created", "user", username)
	return nil
}

// DeleteUser deletes the user with the given username.
func (p *Provider) DeleteUser(ctx context.Context, username string) error {
	res, err := p.db.ExecContext(ctx, p.db.Rebind("DELETE FROM users WHERE username = ?"), username)
	if err != nil {
		return db.WrapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return proto.ErrUserNotFound
	}

	p.logger.Info("user deleted", "user", username)
	return nil
}

// Verify implements identity.Provider.
func (p *Provider) Verify(ctx context.Context, id, secret string) error {
	u, err := p.User(ctx, id)
	if errors.Is(err, proto.ErrUserNotFound) {
		return fmt.Errorf("%w: %v", identity.ErrInvalidCredentials, err)
	}
	if err != nil {
		return err
	}

	if !VerifyPassword(secret, u.Password) {
		return identity.ErrInvalidCredentials
	}

	return nil
}

// SetSecret implements identity.Provider.
func (p *Provider) SetSecret(ctx context.Context, id, newSecret string) error {
	if newSecret == "" {
		return fmt.Errorf("%w: password cannot be empty", proto.ErrInvalidParameter)
	}

	hash, err := HashPassword(newSecret)
	if err != nil {
		return err
	}

	return p.db.TransactionContext(ctx, func(tx *db.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP
				WHERE username = ?`), hash, id)
		if err != nil {
			return db.WrapError(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return proto.ErrUserNotFound
		}

		p.logger.Info("password updated", "user", id)
		return nil
	})
}
