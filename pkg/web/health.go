package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/db"
	"github.com/gorilla/mux"
)

// HealthController registers the health check routes for the web server.
func HealthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/livez", getLiveness)
	r.HandleFunc("/readyz", getReadiness)
}

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderStatus(http.StatusOK)(w, nil)
}

// getReadiness checks the database when one is configured. The object store
// and a managed identity provider are not probed.
func getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if dbx := db.FromContext(ctx); dbx != nil {
		if err := dbx.PingContext(ctx); err != nil {
			log.FromContext(ctx).Error("readiness check failed", "err", err)
			renderStatus(http.StatusServiceUnavailable)(w, nil)
			return
		}
	}

	renderStatus(http.StatusOK)(w, nil)
}
