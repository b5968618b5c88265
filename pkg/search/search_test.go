package search

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/photo"
)

type fakeProvider struct {
	calls   atomic.Int32
	photos  []photo.Photo
	err     error
	release chan struct{}
	lastRef atomic.Bool
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, query string, refresh bool) ([]photo.Photo, error) {
	p.calls.Add(1)
	p.lastRef.Store(refresh)
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.photos, p.err
}

func photos(ids ...string) []photo.Photo {
	out := make([]photo.Photo, len(ids))
	for i, id := range ids {
		out[i] = photo.Photo{ID: id}
	}
	return out
}

func TestServiceSearch(t *testing.T) {
	var buf bytes.Buffer
	p := &fakeProvider{photos: photos("a", "b")}
	s := NewService(p, log.New(&buf))

	got, err := s.Search(context.Background(), "  kyoto  ")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("Search() = %v", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("search complete")) {
		t.Errorf("expected completion log, got %q", buf.String())
	}
}

func TestServiceSearchEmptyResult(t *testing.T) {
	s := NewService(&fakeProvider{}, nil)
	got, err := s.Search(context.Background(), "temple")
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Search() = %#v, want empty non-nil slice", got)
	}
}

func TestServiceSearchErrorsAreFetchFailures(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
		cause errors.Code
	}{
		{"invalid query", "", nil, errors.ErrCodeInvalidQuery},
		{"invalid photo", "kyoto", errors.New(errors.ErrCodeInvalidPhoto, "missing required fields: urls"), errors.ErrCodeInvalidPhoto},
		{"network", "kyoto", stderrors.New("connection refused"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{err: tt.err}
			_, err := NewService(p, nil).Search(context.Background(), tt.query)
			if errors.GetCode(err) != errors.ErrCodeFetchFailure {
				t.Fatalf("code = %q, want FETCH_FAILURE (err: %v)", errors.GetCode(err), err)
			}
			if tt.cause != "" && !errors.Is(err, tt.cause) {
				t.Errorf("cause %s lost from chain: %v", tt.cause, err)
			}
			if tt.query == "" && p.calls.Load() != 0 {
				t.Error("provider must not be called for an invalid query")
			}
		})
	}
}

func TestServiceCoalescesConcurrentSearches(t *testing.T) {
	p := &fakeProvider{photos: photos("a"), release: make(chan struct{})}
	s := NewService(p, nil)

	const n = 5
	var wg sync.WaitGroup
	results := make([][]photo.Photo, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = s.Search(context.Background(), "Kyoto")
		}()
	}
	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()

	if c := p.calls.Load(); c < 1 || c > n {
		t.Fatalf("calls = %d", c)
	}
	for i, r := range results {
		if len(r) != 1 || r[0].ID != "a" {
			t.Errorf("result %d = %v", i, r)
		}
	}
	results[0][0].ID = "mutated"
	if results[1][0].ID != "a" {
		t.Error("callers must receive independent slices")
	}
}

func TestServiceSearchContextCanceled(t *testing.T) {
	p := &fakeProvider{release: make(chan struct{})}
	defer close(p.release)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(p, nil).Search(ctx, "kyoto")
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestServiceSharedSearchSurvivesCanceledCaller(t *testing.T) {
	p := &fakeProvider{photos: photos("a"), release: make(chan struct{})}
	s := NewService(p, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Search(ctxA, "kyoto")
		errA <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type result struct {
		photos []photo.Photo
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := s.Search(context.Background(), "Kyoto")
		resB <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !stderrors.Is(err, context.Canceled) {
		t.Errorf("canceled caller err = %v, want context.Canceled", err)
	}
	close(p.release)

	b := <-resB
	if b.err != nil {
		t.Fatalf("other caller err = %v", b.err)
	}
	if len(b.photos) != 1 || b.photos[0].ID != "a" {
		t.Errorf("other caller got %v", b.photos)
	}
	if c := p.calls.Load(); c != 1 {
		t.Errorf("calls = %d, want 1", c)
	}
}

func TestServiceSearchTimeout(t *testing.T) {
	p := &fakeProvider{release: make(chan struct{})}
	defer close(p.release)
	s := NewService(p, nil)
	s.Timeout = 20 * time.Millisecond

	_, err := s.Search(context.Background(), "kyoto")
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if !errors.Is(err, errors.ErrCodeFetchFailure) {
		t.Errorf("err = %v, want FETCH_FAILURE", err)
	}
}

func TestServiceRefresh(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(p, nil)
	s.Refresh = true
	s.Search(context.Background(), "kyoto")
	if !p.lastRef.Load() {
		t.Error("Refresh not passed to provider")
	}
}

func TestSearcherFunc(t *testing.T) {
	var s Searcher = SearcherFunc(func(ctx context.Context, q string) ([]photo.Photo, error) {
		return photos(q), nil
	})
	got, _ := s.Search(context.Background(), "x")
	if got[0].ID != "x" {
		t.Errorf("got %v", got)
	}
}
