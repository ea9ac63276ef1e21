// Package storage defines the object store capability used to hand out
// time-limited transfer URLs.
package storage

import (
	"context"
	"time"
)

// Method is the HTTP method a signed URL is valid for.
type Method string

const (
	// MethodGet signs a URL to read an object.
	MethodGet Method = "GET"
	// MethodPut signs a URL to write an object.
	MethodPut Method = "PUT"
)

// ObjectStore signs URLs for objects. Signing never transfers object data.
type ObjectStore interface {
	SignURL(ctx context.Context, key string, method Method, ttl time.Duration) (string, error)
}
