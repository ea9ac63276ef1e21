package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/config"
	"github.com/charmbracelet/soft-lfs/pkg/stats"
	"github.com/charmbracelet/soft-lfs/pkg/web"
	"golang.org/x/sync/errgroup"
)

// Server is the Soft LFS server.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Config      *config.Config

	logger *log.Logger
	ctx    context.Context
}

// NewServer returns a new *Server. It expects a context with the
// *config.Config, *log.Logger and the collaborators set up by
// cmd.InitServeContext attached.
func NewServer(ctx context.Context) (*Server, error) {
	var err error
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, config.ErrNilConfig
	}
	srv := &Server{
		Config: cfg,
		logger: log.FromContext(ctx).WithPrefix("server"),
		ctx:    ctx,
	}

	srv.HTTPServer, err = web.NewHTTPServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}

	if cfg.Stats.Enabled {
		srv.StatsServer, err = stats.NewStatsServer(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("create stats server: %w", err)
		}
	}

	return srv, nil
}

// Start starts the HTTP server and, when enabled, the stats server.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	errg.Go(func() error {
		s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
		if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// optionally start the Stats server
	if s.StatsServer != nil {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown. In-flight batch requests
// finish or are cancelled with ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	if s.StatsServer != nil {
		errg.Go(func() error {
			return s.StatsServer.Shutdown(ctx)
		})
	}
	return errg.Wait()
}

// Close closes the servers.
func (s *Server) Close() error {
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	if s.StatsServer != nil {
		errg.Go(s.StatsServer.Close)
	}
	return errg.Wait()
}
