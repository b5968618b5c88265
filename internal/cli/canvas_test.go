package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

func testArrangement() collage.Arrangement {
	return collage.Arrangement{Tiles: []collage.Tile{
		{Photo: testPhoto("a", "hiro", ""), Rect: geom.Rect{X: 355, Y: 195, Width: 250, Height: 250}, IsCenter: true},
		{Photo: testPhoto("b", "yuki", ""), Rect: geom.Rect{X: 0, Y: 0, Width: 250, Height: 250}, Tilt: 2},
	}}
}

func TestCellViewport(t *testing.T) {
	got := cellViewport(120, 40)
	if got != (geom.Size{Width: 960, Height: 640}) {
		t.Errorf("cellViewport(120, 40) = %+v", got)
	}
}

func TestCanvasTileAt(t *testing.T) {
	c := newCanvas(testArrangement(), geom.Size{Width: 960, Height: 640}, 120, 40)

	tests := []struct {
		name     string
		col, row int
		want     int
	}{
		{"center corner", 44, 12, 0},
		{"center far corner", 75, 27, 0},
		{"peripheral", 0, 0, 1},
		{"peripheral edge", 31, 15, 1},
		{"empty", 100, 35, -1},
		{"out of bounds", 200, 0, -1},
		{"negative", 0, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.tileAt(tt.col, tt.row); got != tt.want {
				t.Errorf("tileAt(%d, %d) = %d, want %d", tt.col, tt.row, got, tt.want)
			}
		})
	}

	if c.cells[12][44] != '┌' || c.cells[27][75] != '┘' {
		t.Errorf("center border not drawn: %q %q", c.cells[12][44], c.cells[27][75])
	}
}

func TestCanvasRender(t *testing.T) {
	a := testArrangement()
	out := newCanvas(a, geom.Size{Width: 960, Height: 640}, 120, 40).render(a, 1)

	if lines := strings.Count(out, "\n") + 1; lines != 40 {
		t.Errorf("rendered %d lines, want 40", lines)
	}
	for _, want := range []string{"● @hiro", "1 @yuki"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing label %q", want)
		}
	}
}

func TestCanvasUnavailableViewport(t *testing.T) {
	a := testArrangement()
	c := newCanvas(a, geom.Size{}, 10, 5)
	if c.tileAt(0, 0) != -1 {
		t.Error("nothing should be drawn without a viewport")
	}
}

func TestTileKeys(t *testing.T) {
	for i := 1; i <= len(tileKeys); i++ {
		if got := tileForKey(tileKey(i)); got != i {
			t.Errorf("tileForKey(tileKey(%d)) = %d", i, got)
		}
	}
	if tileKey(0) != "·" || tileKey(len(tileKeys)+1) != "·" {
		t.Error("keys outside the range should render as a dot")
	}
	for _, k := range []string{"q", "r", "s", "h", "l", "/", "", "enter"} {
		if tileForKey(k) != -1 {
			t.Errorf("tileForKey(%q) should be -1", k)
		}
	}
}
