package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/auth"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
	"github.com/gorilla/mux"
)

// UserController registers the credential routes.
func UserController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/user/me", updatePassword).
		Methods(http.MethodPost, http.MethodPut)
}

// updatePassword replaces the caller's password.
// POST|PUT: /user/me.
func updatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithPrefix("http.user")
	status := http.StatusOK
	defer func() {
		passwordUpdatesCounter.WithLabelValues(strconv.Itoa(status)).Inc()
	}()

	body := readBody(w, r)
	if len(body) == 0 {
		status = renderError(w, proto.ErrInvalidParameter)
		return
	}

	req, err := lfs.DecodePasswordRequest(body)
	if err != nil {
		logger.Debug("invalid password request", "err", err)
		status = renderError(w, proto.ErrInvalidParameter)
		return
	}

	authn := auth.FromContext(ctx)
	provider := identity.FromContext(ctx)
	if authn == nil || provider == nil {
		logger.Error("user handler is not configured")
		status = renderError(w, errors.New("missing collaborators"))
		return
	}

	id := auth.ParseAuthorization(r.Header.Get("Authorization"))
	id, err = authn.Require(ctx, id)
	if err != nil {
		status = renderError(w, err)
		return
	}

	if err := provider.SetSecret(ctx, id.ID, req.Password); err != nil {
		logger.Error("error updating password", "user", id.ID, "err", err)
		status = http.StatusInternalServerError
		renderMessage(w, status, msgInternalServerError)
		return
	}

	renderJSON(w, status, lfs.MessageResponse{Message: msgOK})
}
