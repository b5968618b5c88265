package web

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/photo"
	"github.com/matzehuels/collage/pkg/search"
	"github.com/matzehuels/collage/pkg/session"
)

func testPhoto(id, desc string) photo.Photo {
	p := photo.Photo{ID: id, URLs: photo.URLs{Small: "https://images.unsplash.com/" + id}}
	if desc != "" {
		p.AltDescription = &desc
	}
	return p
}

var fixtures = map[string][]photo.Photo{
	"japanese landscape": {testPhoto("a", "mount fuji at dawn"), testPhoto("b", "red torii gate in snow"), testPhoto("c", "")},
	"red torii gate":     {testPhoto("d", ""), testPhoto("b", ""), testPhoto("e", "")},
	"temple":             {},
}

func fixtureSearcher() search.Searcher {
	return search.SearcherFunc(func(_ context.Context, q string) ([]photo.Photo, error) {
		if res, ok := fixtures[q]; ok {
			return res, nil
		}
		return nil, stderrors.New("unexpected query " + q)
	})
}

func newTestServer(t *testing.T, s search.Searcher) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Options{Searcher: s, Gatherer: prometheus.NewRegistry()}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeState(t *testing.T, resp *http.Response, wantStatus int) stateResponse {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d", resp.StatusCode, wantStatus)
	}
	var st stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestSearchProxy(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		err       error
		wantCode  int
		wantError string
	}{
		{"missing query", "", nil, http.StatusBadRequest, "No query"},
		{"shape mismatch", "kyoto", errors.Wrap(errors.ErrCodeFetchFailure, errors.New(errors.ErrCodeInvalidPhoto, "missing required fields: urls"), "search"), http.StatusBadGateway, "Data shape mismatch"},
		{"upstream failure", "kyoto", errors.Wrap(errors.ErrCodeFetchFailure, stderrors.New("connection refused"), "search"), http.StatusInternalServerError, "Failed to fetch data"},
		{"query too long", "kyoto", errors.Wrap(errors.ErrCodeFetchFailure, errors.New(errors.ErrCodeInvalidQuery, "query too long"), "search"), http.StatusBadRequest, "query too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, search.SearcherFunc(func(context.Context, string) ([]photo.Photo, error) {
				return nil, tt.err
			}))
			resp, err := http.Get(srv.URL + "/api?per_page=20&query=" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var body errorResponse
			json.NewDecoder(resp.Body).Decode(&body)
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestSearchProxySuccess(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())
	resp, err := http.Get(srv.URL + "/api?per_page=20&query=japanese+landscape")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || len(body.Data) != 3 || body.Data[0].ID != "a" {
		t.Errorf("status %d body %+v", resp.StatusCode, body)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())

	st := decodeState(t, postJSON(t, srv.URL+"/sessions", map[string]any{"width": 1000, "height": 800}), http.StatusCreated)
	if st.ID == "" || st.CenterID != "a" || len(st.Tiles) != 3 || st.Phase != "idle" {
		t.Fatalf("created = %+v", st)
	}
	if !st.Tiles[0].IsCenter || st.Tiles[0].Rect.X != 375 || st.Tiles[0].Rect.Y != 275 {
		t.Errorf("center tile = %+v", st.Tiles[0])
	}
	base := srv.URL + "/sessions/" + st.ID

	st = decodeState(t, postJSON(t, base+"/select", selectRequest{PhotoID: "b"}), http.StatusOK)
	if !st.Transitioning || len(st.Tiles) != 1 || st.Tiles[0].Photo.ID != "b" || st.CenterID != "a" {
		t.Fatalf("after select = %+v", st)
	}

	// A second click during the transition is ignored.
	st = decodeState(t, postJSON(t, base+"/select", selectRequest{PhotoID: "b"}), http.StatusOK)
	if !st.Transitioning || len(st.Tiles) != 1 {
		t.Errorf("second click changed state: %+v", st)
	}

	st = decodeState(t, postJSON(t, base+"/exit", nil), http.StatusOK)
	if st.Transitioning || st.CenterID != "b" || len(st.Tiles) != 3 {
		t.Fatalf("after exit = %+v", st)
	}
	ids := []string{st.Tiles[0].Photo.ID, st.Tiles[1].Photo.ID, st.Tiles[2].Photo.ID}
	if ids[0] != "b" || ids[1] != "d" || ids[2] != "e" {
		t.Errorf("tiles = %v, want [b d e]", ids)
	}

	resp, err := http.Get(base)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeState(t, resp, http.StatusOK); got.CenterID != "b" {
		t.Errorf("GET state = %+v", got)
	}
}

func TestSessionEmptyQuery(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())
	st := decodeState(t, postJSON(t, srv.URL+"/sessions", nil), http.StatusCreated)

	st = decodeState(t, postJSON(t, srv.URL+"/sessions/"+st.ID+"/query", queryRequest{Query: "temple"}), http.StatusOK)
	if st.Status != "empty" || st.Error != "" || len(st.Tiles) != 0 || st.CenterID != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestSessionViewport(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())
	st := decodeState(t, postJSON(t, srv.URL+"/sessions", nil), http.StatusCreated)
	base := srv.URL + "/sessions/" + st.ID

	st = decodeState(t, postJSON(t, base+"/viewport", viewportRequest{Width: 600, Height: 400}), http.StatusOK)
	if len(st.Tiles) != 3 || st.Tiles[0].Rect.X != 175 || st.Tiles[0].Rect.Y != 75 {
		t.Errorf("after resize = %+v", st.Tiles)
	}

	resp := postJSON(t, base+"/viewport", viewportRequest{Width: -1, Height: 400})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid viewport status = %d", resp.StatusCode)
	}
}

func TestSessionErrors(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())

	resp, err := http.Get(srv.URL + "/sessions/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session status = %d", resp.StatusCode)
	}

	st := decodeState(t, postJSON(t, srv.URL+"/sessions", nil), http.StatusCreated)
	resp = postJSON(t, srv.URL+"/sessions/"+st.ID+"/select", selectRequest{PhotoID: "zzz"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown photo status = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/sessions/"+st.ID+"/query", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d", resp.StatusCode)
	}
}

func TestSelectChecksCurrentCollage(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := search.SearcherFunc(func(ctx context.Context, q string) ([]photo.Photo, error) {
		if q == "red torii gate" {
			close(entered)
			<-release
		}
		return fixtureSearcher().Search(ctx, q)
	})
	srv := newTestServer(t, s)
	st := decodeState(t, postJSON(t, srv.URL+"/sessions", nil), http.StatusCreated)
	base := srv.URL + "/sessions/" + st.ID

	queried := make(chan struct{})
	go func() {
		defer close(queried)
		postJSON(t, base+"/query", queryRequest{Query: "red torii gate"}).Body.Close()
	}()
	<-entered

	// "c" is on screen now but not once the running query lands.
	selected := make(chan int, 1)
	go func() {
		resp := postJSON(t, base+"/select", selectRequest{PhotoID: "c"})
		resp.Body.Close()
		selected <- resp.StatusCode
	}()
	close(release)
	<-queried

	if code := <-selected; code != http.StatusNotFound {
		t.Errorf("select status = %d, want %d", code, http.StatusNotFound)
	}
	resp, err := http.Get(base)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeState(t, resp, http.StatusOK); got.Transitioning || got.CenterID != "d" {
		t.Errorf("state = %+v", got)
	}
}

type failingSetStore struct {
	*session.MemoryStore
	fail atomic.Bool
}

func (f *failingSetStore) Set(ctx context.Context, s *session.Session) error {
	if f.fail.Load() {
		return stderrors.New("store unavailable")
	}
	return f.MemoryStore.Set(ctx, s)
}

func TestLookupLogsRefreshFailure(t *testing.T) {
	var buf bytes.Buffer
	store := &failingSetStore{MemoryStore: session.NewMemoryStore(0, 0)}
	srv := httptest.NewServer(New(Options{
		Searcher: fixtureSearcher(),
		Store:    store,
		Gatherer: prometheus.NewRegistry(),
		Logger:   log.New(&buf),
	}))
	t.Cleanup(srv.Close)

	st := decodeState(t, postJSON(t, srv.URL+"/sessions", nil), http.StatusCreated)
	store.fail.Store(true)

	resp, err := http.Get(srv.URL + "/sessions/" + st.ID)
	if err != nil {
		t.Fatal(err)
	}
	decodeState(t, resp, http.StatusOK)
	if !strings.Contains(buf.String(), "session refresh failed") || !strings.Contains(buf.String(), "store unavailable") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestHomeRedirectsToPage(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Request.URL.Path, "/s/") {
		t.Errorf("final path = %q", resp.Request.URL.Path)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	html := buf.String()
	if !strings.Contains(html, `data-session="`) || strings.Count(html, "<figure") != 3 {
		t.Errorf("unexpected page:\n%s", html)
	}
	if !strings.Contains(html, "Powered by") {
		t.Error("attribution footer missing")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, fixtureSearcher())
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}
