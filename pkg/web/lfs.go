package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/auth"
	"github.com/charmbracelet/soft-lfs/pkg/batch"
	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
	"github.com/gorilla/mux"
)

// maxBodySize bounds request bodies read by the LFS handlers.
const maxBodySize = 10 << 20

// LFSController registers the Git LFS routes.
func LFSController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/{user}/{repo}/objects/batch", serviceBatch).
		Methods(http.MethodPost)

	// Locks are not supported. Every locks route, any method, answers with
	// the same not implemented response.
	r.HandleFunc("/{user}/{repo}/locks", serviceLocks)
	r.HandleFunc("/{user}/{repo}/locks/{rest:.*}", serviceLocks)
}

// readBody reads the request body. A body that cannot be read is treated as
// empty.
func readBody(w http.ResponseWriter, r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close() //nolint: errcheck
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.FromContext(r.Context()).Debug("error reading body", "err", err)
		return nil
	}
	return body
}

// serviceBatch handles a Git LFS batch request.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md
// POST: /<user>/<repo>/objects/batch.
func serviceBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithPrefix("http.lfs")
	operation := "unknown"
	status := http.StatusOK
	defer func() {
		batchCounter.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	}()

	vars := mux.Vars(r)
	user, repo := vars["user"], vars["repo"]
	body := readBody(w, r)
	if user == "" || repo == "" || len(body) == 0 {
		logger.Debug("missing path parameter or body", "user", user, "repo", repo)
		status = renderError(w, proto.ErrInvalidParameter)
		return
	}

	req, err := lfs.DecodeBatchRequest(body)
	if err != nil {
		logger.Debug("invalid batch request", "err", err)
		status = renderError(w, proto.ErrInvalidParameter)
		return
	}
	operation = req.Operation

	authn := auth.FromContext(ctx)
	gen := batch.FromContext(ctx)
	if authn == nil || gen == nil {
		logger.Error("lfs handler is not configured")
		status = renderError(w, errors.New("missing collaborators"))
		return
	}

	id := auth.ParseAuthorization(r.Header.Get("Authorization"))
	id, err = authn.Authenticate(ctx, id, req.Operation)
	if err != nil {
		status = renderError(w, err)
		return
	}

	logger = logger.With("user", user, "repo", repo, "operation", req.Operation)
	if id.Authorized {
		logger = logger.With("caller", id.ID)
	}

	resp, err := gen.Generate(ctx, batch.Request{
		User:      user,
		Repo:      repo,
		Operation: req.Operation,
		Objects:   req.Objects,
	})
	if err != nil {
		logger.Error("error generating actions", "objects", len(req.Objects), "err", err)
		status = renderError(w, err)
		return
	}

	batchObjectsCounter.WithLabelValues(req.Operation).Add(float64(len(resp.Objects)))
	logger.Debug("batch", "objects", len(resp.Objects))
	renderJSON(w, status, resp)
}

// serviceLocks answers every locks request.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/locking.md
func serviceLocks(w http.ResponseWriter, _ *http.Request) {
	renderError(w, proto.ErrNotImplemented)
}
