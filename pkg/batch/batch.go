// Package batch turns a validated batch request into per-object transfer
// actions backed by signed object store URLs.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"github.com/charmbracelet/soft-lfs/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// ObjectKey returns the object store key of oid in user/repo. Components are
// joined verbatim.
func ObjectKey(user, repo, oid string) string {
	return user + "/" + repo + "/" + oid
}

// Request is a batch of objects to generate actions for.
type Request struct {
	User      string
	Repo      string
	Operation string
	Objects   []lfs.Pointer
}

// Generator produces transfer actions. It is safe for concurrent use.
type Generator struct {
	store storage.ObjectStore
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source used for expiry timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator returns a Generator signing URLs valid for ttl.
func NewGenerator(store storage.ObjectStore, ttl time.Duration, opts ...Option) *Generator {
	g := &Generator{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate signs one URL per object concurrently. The response keeps the
// request order. The first signing failure cancels the remaining work and
// is returned.
func (g *Generator) Generate(ctx context.Context, req Request) (*lfs.BatchResponse, error) {
	var method storage.Method
	switch req.Operation {
	case lfs.OperationUpload:
		method = storage.MethodPut
	case lfs.OperationDownload:
		method = storage.MethodGet
	default:
		return nil, fmt.Errorf("unknown operation %q", req.Operation)
	}

	objects := make([]*lfs.ObjectResponse, len(req.Objects))
	eg, ctx := errgroup.WithContext(ctx)
	for i, p := range req.Objects {
		i, p := i, p
		eg.Go(func() error {
			key := ObjectKey(req.User, req.Repo, p.Oid)
			expiresAt := g.now().Add(g.ttl)
			href, err := g.store.SignURL(ctx, key, method, g.ttl)
			if err != nil {
				return fmt.Errorf("sign %s: %w", key, err)
			}

			link := lfs.NewLink(href, expiresAt)
			obj := &lfs.ObjectResponse{
				Pointer:       p,
				Authenticated: true,
			}
			if method == storage.MethodPut {
				obj.Actions.Upload = link
			} else {
				obj.Actions.Download = link
			}
			objects[i] = obj
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &lfs.BatchResponse{
		Transfer: lfs.TransferBasic,
		Objects:  objects,
	}, nil
}
