package s3

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/soft-lfs/pkg/storage"
	"github.com/matryer/is"
)

func TestSignURL(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	st, err := New(ctx, Config{
		Bucket:          "my-bucket",
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	})
	is.NoErr(err)

	for _, c := range []struct {
		method storage.Method
	}{
		{storage.MethodGet},
		{storage.MethodPut},
	} {
		href, err := st.SignURL(ctx, "alice/repo1/abc123", c.method, time.Hour)
		is.NoErr(err)

		u, err := url.Parse(href)
		is.NoErr(err)
		is.Equal(u.Scheme, "https")
		is.True(strings.HasPrefix(u.Host, "my-bucket."))
		is.Equal(u.Path, "/alice/repo1/abc123")
		is.Equal(u.Query().Get("X-Amz-Expires"), "3600")
		is.True(u.Query().Get("X-Amz-Signature") != "")
		is.True(strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/"))
	}
}

func TestSignURLPathStyle(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	st, err := New(ctx, Config{
		Bucket:          "my-bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	is.NoErr(err)

	href, err := st.SignURL(ctx, "alice/repo1/abc123", storage.MethodPut, 10*time.Second)
	is.NoErr(err)
	is.True(strings.HasPrefix(href, "http://localhost:9000/my-bucket/alice/repo1/abc123?"))
}

func TestSignURLUnknownMethod(t *testing.T) {
	is := is.New(t)
	st := NewWithPresigner("my-bucket", s3.NewPresignClient(s3.New(s3.Options{Region: "us-east-1"})))
	_, err := st.SignURL(context.TODO(), "k", storage.Method("DELETE"), time.Minute)
	is.True(err != nil)
}

type failingPresigner struct {
	Presigner
	err error
}

func (f failingPresigner) PresignGetObject(context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return nil, f.err
}

func TestSignURLError(t *testing.T) {
	is := is.New(t)
	want := errors.New("no credentials")
	st := NewWithPresigner("my-bucket", failingPresigner{err: want})
	_, err := st.SignURL(context.TODO(), "alice/repo1/abc123", storage.MethodGet, time.Minute)
	is.True(errors.Is(err, want))
}
