package photo

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/collage/pkg/errors"
)

func loadFixture(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile("testdata/result.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return m
}

func encode(t *testing.T, m map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestDecodeStripsUnknownFields(t *testing.T) {
	p, err := Decode(encode(t, loadFixture(t)))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if p.ID != "eOLpJytrbsQ" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.Likes != 2714 {
		t.Errorf("Likes = %d, want 2714", p.Likes)
	}
	if p.User.ProfileImage.Medium != "https://images.unsplash.com/profile-1?w=64" {
		t.Errorf("avatar = %q", p.User.ProfileImage.Medium)
	}
	if p.Description() != "woman wearing red kimono standing near temple" {
		t.Errorf("Description() = %q", p.Description())
	}

	out, _ := json.Marshal(p)
	for _, dropped := range []string{"created_at", "liked_by_user", "download", `"large"`} {
		if strings.Contains(string(out), dropped) {
			t.Errorf("re-encoded photo still contains %s", dropped)
		}
	}
}

func TestDecodeNullDescription(t *testing.T) {
	m := loadFixture(t)
	m["alt_description"] = nil

	p, err := Decode(encode(t, m))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if p.AltDescription != nil {
		t.Errorf("AltDescription = %q, want nil", *p.AltDescription)
	}
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		wantMsg string
	}{
		{"missing id", func(m map[string]any) { delete(m, "id") }, "id"},
		{"null id", func(m map[string]any) { m["id"] = nil }, "id"},
		{"missing alt_description", func(m map[string]any) { delete(m, "alt_description") }, "alt_description"},
		{"missing nested url", func(m map[string]any) { delete(m["urls"].(map[string]any), "small_s3") }, "urls.small_s3"},
		{"missing avatar", func(m map[string]any) {
			delete(m["user"].(map[string]any)["profile_image"].(map[string]any), "medium")
		}, "user.profile_image.medium"},
		{"missing user", func(m map[string]any) { delete(m, "user") }, "user"},
		{"wrong likes type", func(m map[string]any) { m["likes"] = "many" }, "decode photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadFixture(t)
			tt.mutate(m)

			_, err := Decode(encode(t, m))
			if err == nil {
				t.Fatal("Decode() succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidPhoto) {
				t.Errorf("error code = %v, want INVALID_PHOTO", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecodeAllFailsFast(t *testing.T) {
	good := encode(t, loadFixture(t))
	bad := loadFixture(t)
	delete(bad, "slug")

	photos, err := DecodeAll([]json.RawMessage{good, encode(t, bad), good})
	if err == nil {
		t.Fatal("DecodeAll() succeeded, want error")
	}
	if photos != nil {
		t.Errorf("DecodeAll() returned %d photos alongside an error", len(photos))
	}
	if !strings.Contains(err.Error(), "record 1") {
		t.Errorf("error %q should name the failing record", err)
	}

	photos, err = DecodeAll([]json.RawMessage{good, good})
	if err != nil {
		t.Fatalf("DecodeAll() error: %v", err)
	}
	if len(photos) != 2 {
		t.Errorf("got %d photos, want 2", len(photos))
	}
}

func TestQueryFromDescription(t *testing.T) {
	desc := func(s string) *string { return &s }
	tests := []struct {
		name string
		alt  *string
		want string
	}{
		{"long", desc("woman wearing red kimono standing near temple"), "woman wearing red"},
		{"short", desc("temple"), "temple"},
		{"extra spaces", desc("  green   moss  garden path"), "green moss garden"},
		{"null", nil, "japanese aesthetic"},
		{"blank", desc("   "), "japanese aesthetic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Photo{ID: "x", AltDescription: tt.alt}
			if got := p.QueryFromDescription(3, "japanese aesthetic"); got != tt.want {
				t.Errorf("QueryFromDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAltText(t *testing.T) {
	p := Photo{ID: "x"}
	if got := p.AltText(true); got != "Center image" {
		t.Errorf("AltText(true) = %q", got)
	}
	if got := p.AltText(false); got != "Image" {
		t.Errorf("AltText(false) = %q", got)
	}
}

func TestIndexAndWithout(t *testing.T) {
	photos := []Photo{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if got := Index(photos, "b"); got != 1 {
		t.Errorf("Index(b) = %d, want 1", got)
	}
	if got := Index(photos, "z"); got != -1 {
		t.Errorf("Index(z) = %d, want -1", got)
	}

	rest := Without(photos, "a")
	if len(rest) != 2 || rest[0].ID != "b" || rest[1].ID != "c" {
		t.Errorf("Without(a) = %+v", rest)
	}
	if len(photos) != 3 {
		t.Error("Without modified its input")
	}
}
