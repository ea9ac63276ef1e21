package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"github.com/charmbracelet/soft-lfs/pkg/storage"
	"github.com/matryer/is"
)

type signCall struct {
	key    string
	method storage.Method
	ttl    time.Duration
}

type fakeStore struct {
	mu    sync.Mutex
	calls []signCall
	fail  map[string]error
}

func (f *fakeStore) SignURL(ctx context.Context, key string, method storage.Method, ttl time.Duration) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, signCall{key, method, ttl})
	f.mu.Unlock()
	if err := f.fail[key]; err != nil {
		return "", err
	}
	return fmt.Sprintf("https://my-bucket.s3.amazonaws.com/%s?method=%s", key, method), nil
}

var fixed = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return fixed }

func TestObjectKey(t *testing.T) {
	is := is.New(t)
	is.Equal(ObjectKey("alice", "repo1", "abc123"), "alice/repo1/abc123")
	is.Equal(ObjectKey("alice", "repo1", "abc123"), ObjectKey("alice", "repo1", "abc123"))
	is.Equal(ObjectKey("a b", "r%2F", "x/y"), "a b/r%2F/x/y")
}

func TestGenerateDownload(t *testing.T) {
	is := is.New(t)
	st := &fakeStore{}
	g := NewGenerator(st, time.Hour, WithClock(clock))

	resp, err := g.Generate(context.TODO(), Request{
		User:      "alice",
		Repo:      "repo1",
		Operation: lfs.OperationDownload,
		Objects:   []lfs.Pointer{{Oid: "abc123", Size: 10}},
	})
	is.NoErr(err)
	is.Equal(resp.Transfer, "basic")
	is.Equal(len(resp.Objects), 1)

	obj := resp.Objects[0]
	is.Equal(obj.Oid, "abc123")
	is.Equal(obj.Size, int64(10))
	is.True(obj.Authenticated)
	is.True(obj.Actions.Upload == nil)
	is.Equal(obj.Actions.Download.Href, "https://my-bucket.s3.amazonaws.com/alice/repo1/abc123?method=GET")
	is.Equal(obj.Actions.Download.Header, map[string]string{})
	is.Equal(obj.Actions.Download.ExpiresAt, "2024-01-02T04:04:05Z")

	is.Equal(st.calls, []signCall{{"alice/repo1/abc123", storage.MethodGet, time.Hour}})
}

func TestGenerateUpload(t *testing.T) {
	is := is.New(t)
	st := &fakeStore{}
	g := NewGenerator(st, 90*time.Second, WithClock(clock))

	objects := make([]lfs.Pointer, 50)
	for i := range objects {
		objects[i] = lfs.Pointer{Oid: fmt.Sprintf("oid%02d", i), Size: int64(i)}
	}
	resp, err := g.Generate(context.TODO(), Request{
		User:      "bob",
		Repo:      "assets",
		Operation: lfs.OperationUpload,
		Objects:   objects,
	})
	is.NoErr(err)
	is.Equal(len(resp.Objects), len(objects))
	for i, obj := range resp.Objects {
		is.Equal(obj.Pointer, objects[i]) // order preserved
		is.True(obj.Authenticated)
		is.True(obj.Actions.Download == nil)
		is.Equal(obj.Actions.Upload.Href, fmt.Sprintf("https://my-bucket.s3.amazonaws.com/bob/assets/oid%02d?method=PUT", i))
		is.Equal(obj.Actions.Upload.ExpiresAt, "2024-01-02T03:05:35Z")
	}
	is.Equal(len(st.calls), len(objects))
}

func TestGenerateEmpty(t *testing.T) {
	is := is.New(t)
	st := &fakeStore{}
	g := NewGenerator(st, time.Hour)

	resp, err := g.Generate(context.TODO(), Request{
		User:      "alice",
		Repo:      "repo1",
		Operation: lfs.OperationUpload,
		Objects:   []lfs.Pointer{},
	})
	is.NoErr(err)
	is.Equal(resp.Transfer, lfs.TransferBasic)
	is.True(resp.Objects != nil)
	is.Equal(len(resp.Objects), 0)
	is.Equal(len(st.calls), 0)
}

func TestGenerateFailure(t *testing.T) {
	is := is.New(t)
	want := errors.New("access denied")
	st := &fakeStore{fail: map[string]error{"alice/repo1/bad": want}}
	g := NewGenerator(st, time.Hour)

	resp, err := g.Generate(context.TODO(), Request{
		User:      "alice",
		Repo:      "repo1",
		Operation: lfs.OperationDownload,
		Objects: []lfs.Pointer{
			{Oid: "good", Size: 1},
			{Oid: "bad", Size: 2},
			{Oid: "other", Size: 3},
		},
	})
	is.True(resp == nil)
	is.True(errors.Is(err, want))
}

func TestGenerateUnknownOperation(t *testing.T) {
	is := is.New(t)
	g := NewGenerator(&fakeStore{}, time.Hour)
	_, err := g.Generate(context.TODO(), Request{Operation: "delete"})
	is.True(err != nil)
}

type blockingStore struct {
	started atomic.Int32
}

func (b *blockingStore) SignURL(ctx context.Context, key string, _ storage.Method, _ time.Duration) (string, error) {
	b.started.Add(1)
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateCancelled(t *testing.T) {
	is := is.New(t)
	st := &blockingStore{}
	g := NewGenerator(st, time.Hour)

	ctx, cancel := context.WithCancel(context.TODO())
	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(ctx, Request{
			User:      "alice",
			Repo:      "repo1",
			Operation: lfs.OperationDownload,
			Objects:   []lfs.Pointer{{Oid: "a"}, {Oid: "b"}},
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		is.True(errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after cancellation")
	}
}

func TestContext(t *testing.T) {
	is := is.New(t)
	is.True(FromContext(context.TODO()) == nil)
	g := NewGenerator(&fakeStore{}, time.Hour)
	is.Equal(FromContext(WithContext(context.TODO(), g)), g)
}
