package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/photo"
)

func testPhoto(id, username, desc string) photo.Photo {
	p := photo.Photo{
		ID:    id,
		Links: photo.Links{HTML: "https://unsplash.com/photos/" + id},
		User:  photo.User{Username: username},
	}
	if desc != "" {
		p.AltDescription = &desc
	}
	return p
}

var testPhotos = []photo.Photo{
	testPhoto("a", "hiro", "mount fuji at dawn"),
	testPhoto("b", "yuki", "red torii gate in snow"),
	testPhoto("c", "ren", ""),
}

// apiServer mimics the /api route of a running collage server.
func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" || r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No query"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": testPhotos})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the root command with args in an isolated config environment.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("COLLAGE_CACHE", "none")

	var logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"serve", "browse", "search", "layout", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestSearchCommandJSON(t *testing.T) {
	srv := apiServer(t)

	out, logs, err := execute(t, "search", "japanese", "landscape", "--remote", srv.URL, "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var got []photo.Photo
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got) != 3 || got[0].ID != "a" {
		t.Errorf("search output = %+v", got)
	}
	if !strings.Contains(logs, "Found 3 photos") {
		t.Errorf("expected progress log, got %q", logs)
	}
}

func TestSearchCommandTable(t *testing.T) {
	srv := apiServer(t)

	out, _, err := execute(t, "search", "kyoto", "--remote", srv.URL)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, want := range []string{"Photographer", "@hiro", "mount fuji at dawn"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCommandInvalidQuery(t *testing.T) {
	srv := apiServer(t)

	if _, _, err := execute(t, "search", "   ", "--remote", srv.URL); err == nil {
		t.Error("expected error for blank query")
	}
}

func TestLayoutCommandJSON(t *testing.T) {
	srv := apiServer(t)

	out, _, err := execute(t, "layout", "japanese landscape",
		"--remote", srv.URL, "--seed", "7", "--width", "1280", "--height", "800", "--json")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var got struct {
		Query       string              `json:"query"`
		CenterID    string              `json:"center_id"`
		Arrangement collage.Arrangement `json:"arrangement"`
		Status      string              `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.CenterID != "a" || got.Status != "ok" {
		t.Errorf("center = %q, status = %q", got.CenterID, got.Status)
	}
	if got.Arrangement.Len() != 3 {
		t.Errorf("tiles = %d, want 3", got.Arrangement.Len())
	}
}

func TestLayoutCommandPivot(t *testing.T) {
	srv := apiServer(t)

	out, _, err := execute(t, "layout", "--remote", srv.URL, "--seed", "7", "--pivot", "1", "--json")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var got struct {
		Query       string              `json:"query"`
		CenterID    string              `json:"center_id"`
		Arrangement collage.Arrangement `json:"arrangement"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.CenterID != "b" {
		t.Errorf("center after pivot = %q, want b", got.CenterID)
	}
	if center, ok := got.Arrangement.Center(); !ok || center.Photo.ID != "b" {
		t.Errorf("center tile = %+v", center)
	}
	if got.Arrangement.Len() != 3 {
		t.Errorf("tiles = %d, want 3", got.Arrangement.Len())
	}
}

func TestLayoutCommandPivotOutOfRange(t *testing.T) {
	srv := apiServer(t)

	_, _, err := execute(t, "layout", "--remote", srv.URL, "--pivot", "9")
	if err == nil || !strings.Contains(err.Error(), "--pivot 9") {
		t.Errorf("err = %v, want pivot range error", err)
	}
}

func TestLayoutCommandText(t *testing.T) {
	srv := apiServer(t)

	out, _, err := execute(t, "layout", "kyoto", "--remote", srv.URL, "--seed", "3", "--cols", "80")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "@hiro") || !strings.Contains(out, "mount fuji at dawn") {
		t.Errorf("text layout missing tiles:\n%s", out)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("UNSPLASH_ACCESS_KEY", "abcdefgh1234")

	out, _, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "abcdefgh1234") {
		t.Error("access key printed in clear text")
	}
	if !strings.Contains(out, "****1234") {
		t.Errorf("masked key missing:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := t.TempDir() + "/collage.toml"

	if _, _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, _, err := execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "****"},
		{"abcd", "****"},
		{"abcdefgh", "****efgh"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a long description", 6); got != "a lon…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "collage") {
		t.Error("bash completion does not mention the binary")
	}
	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
