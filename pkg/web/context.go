package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/auth"
	"github.com/charmbracelet/soft-lfs/pkg/batch"
	"github.com/charmbracelet/soft-lfs/pkg/config"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

// NewContextHandler returns a new context middleware.
// This middleware adds the config, collaborators, and a request scoped
// logger to the request context.
func NewContextHandler(ctx context.Context) func(http.Handler) http.Handler {
	cfg := config.FromContext(ctx)
	authn := auth.FromContext(ctx)
	gen := batch.FromContext(ctx)
	provider := identity.FromContext(ctx)
	dbx := db.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.NewString()
			w.Header().Set(RequestIDHeader, reqID)

			ctx := r.Context()
			ctx = config.WithContext(ctx, cfg)
			ctx = auth.WithContext(ctx, authn)
			ctx = batch.WithContext(ctx, gen)
			ctx = identity.WithContext(ctx, provider)
			if dbx != nil {
				ctx = db.WithContext(ctx, dbx)
			}
			ctx = log.WithContext(ctx, logger.With(
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"addr", r.RemoteAddr,
			))
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}
