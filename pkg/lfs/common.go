package lfs

import (
	"encoding/json"
	"time"
)

const (
	// MediaType contains the media type for LFS server requests.
	MediaType = "application/vnd.git-lfs+json"

	// OperationDownload is the operation name for a download request.
	OperationDownload = "download"

	// OperationUpload is the operation name for an upload request.
	OperationUpload = "upload"

	// TransferBasic is the name of the Git LFS basic transfer protocol.
	TransferBasic = "basic"

	// ExpiresAtLayout is the layout of Link.ExpiresAt. Timestamps are always
	// rendered in UTC with second precision.
	ExpiresAtLayout = "2006-01-02T15:04:05Z07:00"
)

// IsOperation reports whether op is one of the known batch operations.
// Operation names are case-sensitive.
func IsOperation(op string) bool {
	return op == OperationDownload || op == OperationUpload
}

// Pointer contains LFS pointer data.
type Pointer struct {
	Oid  string `json:"oid"`
	Size int64  `json:"size"`
}

// ErrorResponse describes the error to the client.
type ErrorResponse struct {
	Message string `json:"message"`
}

// BatchRequest contains multiple requests processed in one batch operation.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#requests
type BatchRequest struct {
	Operation string     `json:"operation"`
	Transfers []string   `json:"transfers,omitempty"`
	Ref       *Reference `json:"ref,omitempty"`
	Objects   []Pointer  `json:"objects"`

	// Extra holds top-level fields this server does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// Reference contains a git reference.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#ref-property
type Reference struct {
	Name string `json:"name"`
}

// BatchResponse contains multiple object metadata Representation structures
// for use with the batch API.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#successful-responses
type BatchResponse struct {
	Transfer string            `json:"transfer"`
	Objects  []*ObjectResponse `json:"objects"`
}

// ObjectResponse is object metadata as seen by clients of the LFS server.
type ObjectResponse struct {
	Pointer
	Authenticated bool    `json:"authenticated"`
	Actions       Actions `json:"actions"`
}

// Actions holds the transfer action of an object. Only the action matching
// the request operation is set.
type Actions struct {
	Download *Link `json:"download,omitempty"`
	Upload   *Link `json:"upload,omitempty"`
}

// Link provides a structure with information about how to access a object.
type Link struct {
	Href      string            `json:"href"`
	Header    map[string]string `json:"header"`
	ExpiresAt string            `json:"expires_at"`
}

// NewLink returns a Link to href that expires at t.
func NewLink(href string, t time.Time) *Link {
	return &Link{
		Href:      href,
		Header:    map[string]string{},
		ExpiresAt: FormatExpiresAt(t),
	}
}

// FormatExpiresAt formats t as an ISO 8601 timestamp with an explicit UTC
// offset.
func FormatExpiresAt(t time.Time) string {
	return t.UTC().Format(ExpiresAtLayout)
}

// PasswordRequest is the request body to change the caller's password.
type PasswordRequest struct {
	Password string `json:"password"`

	// Extra holds fields this server does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// MessageResponse is the body of a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
