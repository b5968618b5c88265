package geom

import "testing"

func TestOverlapArea(t *testing.T) {
	tile := Size{Width: 250, Height: 250}
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", NewRect(0, 0, tile), NewRect(0, 0, tile), 62500},
		{"disjoint", NewRect(0, 0, tile), NewRect(500, 500, tile), 0},
		{"touching edge", NewRect(0, 0, tile), NewRect(250, 0, tile), 0},
		{"partial", NewRect(0, 0, tile), NewRect(200, 150, tile), 50 * 100},
		{"contained", Rect{X: 0, Y: 0, Width: 100, Height: 100}, Rect{X: 10, Y: 10, Width: 20, Height: 30}, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapArea(tt.a, tt.b); got != tt.want {
				t.Errorf("OverlapArea() = %v, want %v", got, tt.want)
			}
			if got := OverlapArea(tt.b, tt.a); got != tt.want {
				t.Errorf("OverlapArea() not symmetric: %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalOverlap(t *testing.T) {
	tile := Size{Width: 100, Height: 100}
	r := NewRect(50, 50, tile)
	set := []Rect{NewRect(0, 0, tile), NewRect(100, 100, tile), NewRect(400, 400, tile)}

	if got, want := TotalOverlap(r, set), 2500.0+2500.0; got != want {
		t.Errorf("TotalOverlap() = %v, want %v", got, want)
	}
	if got := TotalOverlap(r, nil); got != 0 {
		t.Errorf("TotalOverlap(nil) = %v, want 0", got)
	}
}

func TestRectWithin(t *testing.T) {
	vp := Size{Width: 1000, Height: 800}
	tile := Size{Width: 250, Height: 250}

	if !NewRect(750, 550, tile).Within(vp) {
		t.Error("rect at bottom-right corner should be within viewport")
	}
	if NewRect(751, 0, tile).Within(vp) {
		t.Error("rect past right edge should not be within viewport")
	}
	if NewRect(-1, 0, tile).Within(vp) {
		t.Error("rect with negative x should not be within viewport")
	}
}
