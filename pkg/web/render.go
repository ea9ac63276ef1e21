package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"github.com/charmbracelet/soft-lfs/pkg/proto"
)

// Response messages.
const (
	msgInvalidParameter      = "invalid parameter"
	msgAuthorizationRequired = "Authorization Required"
	msgInvalidUserOrPassword = "Invalid User Or Password"
	msgInternalServerError   = "Internal server error"
	msgLockNotImplemented    = "Lock Is Not Implemented"
	msgOK                    = "OK"
)

func hdrLfs(w http.ResponseWriter) {
	w.Header().Set("Content-Type", lfs.MediaType)
}

func askCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Basic")
	w.Header().Set("LFS-Authenticate", "Basic")
}

// renderJSON writes v as the JSON body of the response, followed by a
// newline.
func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	hdrLfs(w)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

func renderMessage(w http.ResponseWriter, statusCode int, message string) {
	renderJSON(w, statusCode, lfs.ErrorResponse{Message: message})
}

// errorStatus maps err to a status code and client message. Unclassified
// errors are internal server errors.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, proto.ErrInvalidParameter):
		return http.StatusBadRequest, msgInvalidParameter
	case errors.Is(err, proto.ErrAuthorizationRequired):
		return http.StatusUnauthorized, msgAuthorizationRequired
	case errors.Is(err, proto.ErrInvalidUserOrPassword):
		return http.StatusUnauthorized, msgInvalidUserOrPassword
	case errors.Is(err, proto.ErrNotImplemented):
		return http.StatusNotFound, msgLockNotImplemented
	default:
		return http.StatusInternalServerError, msgInternalServerError
	}
}

// renderError writes the response for err and returns the status code.
func renderError(w http.ResponseWriter, err error) int {
	code, msg := errorStatus(err)
	if code == http.StatusUnauthorized {
		askCredentials(w)
	}
	renderMessage(w, code, msg)
	return code
}

func renderNotFound(w http.ResponseWriter, _ *http.Request) {
	renderMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func renderMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	renderMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}
