package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

// Terminal cells are roughly twice as tall as they are wide. These sizes map
// cells to the pixel space the layout engine works in.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

var (
	styleTileCenter   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleTileSelected = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleTile         = lipgloss.NewStyle().Foreground(colorGray)
	styleTileEmpty    = lipgloss.NewStyle()
)

// cellViewport returns the pixel viewport covered by a cols x rows grid.
func cellViewport(cols, rows int) geom.Size {
	return geom.Size{Width: float64(cols) * cellWidth, Height: float64(rows) * cellHeight}
}

// canvas is a character grid onto which an arrangement is drawn. owner holds
// the index of the topmost tile covering each cell, or -1.
type canvas struct {
	cols, rows int
	cells      [][]rune
	owner      [][]int
}

// newCanvas draws a onto a cols x rows grid covering the viewport vp.
// Peripherals are drawn in arrangement order with the center on top.
func newCanvas(a collage.Arrangement, vp geom.Size, cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows}
	c.cells = make([][]rune, rows)
	c.owner = make([][]int, rows)
	for r := range rows {
		c.cells[r] = []rune(strings.Repeat(" ", cols))
		c.owner[r] = make([]int, cols)
		for col := range c.owner[r] {
			c.owner[r][col] = -1
		}
	}
	if vp.Width <= 0 || vp.Height <= 0 || cols <= 0 || rows <= 0 {
		return c
	}

	center := -1
	for i, t := range a.Tiles {
		if t.IsCenter {
			center = i
			continue
		}
		c.drawTile(i, t, vp)
	}
	if center >= 0 {
		c.drawTile(center, a.Tiles[center], vp)
	}
	return c
}

func (c *canvas) drawTile(idx int, t collage.Tile, vp geom.Size) {
	sx := float64(c.cols) / vp.Width
	sy := float64(c.rows) / vp.Height
	c0 := clamp(int(math.Floor(t.Rect.X*sx)), 0, c.cols-1)
	r0 := clamp(int(math.Floor(t.Rect.Y*sy)), 0, c.rows-1)
	c1 := clamp(int(math.Ceil(t.Rect.Right()*sx))-1, c0, c.cols-1)
	r1 := clamp(int(math.Ceil(t.Rect.Bottom()*sy))-1, r0, c.rows-1)

	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			ch := ' '
			switch {
			case r == r0 && col == c0:
				ch = '┌'
			case r == r0 && col == c1:
				ch = '┐'
			case r == r1 && col == c0:
				ch = '└'
			case r == r1 && col == c1:
				ch = '┘'
			case r == r0 || r == r1:
				ch = '─'
			case col == c0 || col == c1:
				ch = '│'
			}
			c.cells[r][col] = ch
			c.owner[r][col] = idx
		}
	}

	label := []rune(tileLabel(idx, t))
	lr := r0 + (r1-r0)/2
	lc := c0 + (c1-c0+1-len(label))/2
	for i, ch := range label {
		if col := lc + i; col > c0 && col < c1 && lr > r0 && lr < r1 {
			c.cells[lr][col] = ch
		}
	}
}

// tileAt returns the tile index drawn at the given cell, or -1.
func (c *canvas) tileAt(col, row int) int {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return -1
	}
	return c.owner[row][col]
}

// render returns the grid with tiles styled by role. selected is the index of
// the highlighted tile, or -1.
func (c *canvas) render(a collage.Arrangement, selected int) string {
	styleFor := func(idx int) lipgloss.Style {
		switch {
		case idx < 0:
			return styleTileEmpty
		case idx == selected:
			return styleTileSelected
		case a.Tiles[idx].IsCenter:
			return styleTileCenter
		}
		return styleTile
	}

	var b strings.Builder
	for r := range c.rows {
		start := 0
		for col := 1; col <= c.cols; col++ {
			if col < c.cols && c.owner[r][col] == c.owner[r][start] {
				continue
			}
			b.WriteString(styleFor(c.owner[r][start]).Render(string(c.cells[r][start:col])))
			start = col
		}
		if r < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// tileLabel is the text drawn inside a tile: its selection key and
// photographer.
func tileLabel(idx int, t collage.Tile) string {
	if t.IsCenter {
		return "● @" + t.Photo.User.Username
	}
	return tileKey(idx) + " @" + t.Photo.User.Username
}

// tileKeys select peripherals by position. Keys bound to browse commands are
// left out.
const tileKeys = "123456789abcdefgijkmnoptuvwxyz"

// tileKey is the key that selects the tile at idx in the browse view.
func tileKey(idx int) string {
	if idx >= 1 && idx <= len(tileKeys) {
		return string(tileKeys[idx-1])
	}
	return "·"
}

// tileForKey is the inverse of tileKey.
func tileForKey(key string) int {
	if len(key) != 1 {
		return -1
	}
	i := strings.IndexByte(tileKeys, key[0])
	if i < 0 {
		return -1
	}
	return i + 1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
