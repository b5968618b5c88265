// Package collage lays out a center photo and its peripherals into an
// [Arrangement] of tiles.
//
// A layout pass always places the center first, at the middle of the
// viewport, then each peripheral in list order. Every peripheral avoids the
// center and the peripherals accepted earlier in the same pass. Tiles that
// cannot fit are left out, so an arrangement may hold fewer tiles than
// photos. Arrangements are rebuilt from scratch on every pass.
package collage

import (
	"context"
	"time"

	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/photo"
	"github.com/matzehuels/collage/pkg/placement"
)

// Layout defaults.
const (
	DefaultTileWidth   = 250
	DefaultTileHeight  = 250
	DefaultMaxAttempts = 100
	DefaultMaxTilt     = 5
)

// Tile is a placed photo. Tilt is a rotation in degrees; it is always 0 for
// the center tile.
type Tile struct {
	Photo    photo.Photo `json:"photo"`
	Rect     geom.Rect   `json:"rect"`
	IsCenter bool        `json:"is_center"`
	Tilt     float64     `json:"tilt"`
}

// Arrangement is the set of tiles shown at one time. When non-empty it
// holds exactly one center tile, always first.
type Arrangement struct {
	Tiles []Tile `json:"tiles"`
}

// Len returns the number of tiles.
func (a Arrangement) Len() int { return len(a.Tiles) }

// Center returns the center tile.
func (a Arrangement) Center() (Tile, bool) {
	for _, t := range a.Tiles {
		if t.IsCenter {
			return t, true
		}
	}
	return Tile{}, false
}

// Peripherals returns the non-center tiles in placement order.
func (a Arrangement) Peripherals() []Tile {
	out := make([]Tile, 0, len(a.Tiles))
	for _, t := range a.Tiles {
		if !t.IsCenter {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the tile showing the photo with the given id.
func (a Arrangement) Find(id string) (Tile, bool) {
	for _, t := range a.Tiles {
		if t.Photo.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// Clone returns a copy that shares no tile storage with a.
func (a Arrangement) Clone() Arrangement {
	if a.Tiles == nil {
		return Arrangement{}
	}
	return Arrangement{Tiles: append([]Tile(nil), a.Tiles...)}
}

// Config controls tile size and the placement search.
type Config struct {
	TileSize    geom.Size
	MaxAttempts int     // per peripheral; see placement.Options
	MaxTilt     float64 // degrees; peripherals tilt uniformly in [-MaxTilt, MaxTilt)
}

// DefaultConfig returns 250x250 tiles, 100 attempts and a 5 degree tilt.
func DefaultConfig() Config {
	return Config{
		TileSize:    geom.Size{Width: DefaultTileWidth, Height: DefaultTileHeight},
		MaxAttempts: DefaultMaxAttempts,
		MaxTilt:     DefaultMaxTilt,
	}
}

// Layouter builds arrangements. It is not safe for concurrent use because
// the engine owns its random source.
type Layouter struct {
	Engine *placement.Engine
	Config Config
}

// NewLayouter creates a Layouter. A nil engine gets a randomly seeded one.
func NewLayouter(e *placement.Engine, cfg Config) *Layouter {
	if e == nil {
		e = placement.NewEngine(nil)
	}
	return &Layouter{Engine: e, Config: cfg}
}

// Layout arranges center and peripherals inside vp. Peripherals sharing the
// center's id are skipped. If the center itself cannot be placed the result
// is empty, since every tile has the same size.
func (l *Layouter) Layout(vp placement.Viewport, center photo.Photo, peripherals []photo.Photo) Arrangement {
	start := time.Now()
	tile := l.Config.TileSize

	centerRect, ok := l.Engine.Place(tile, vp, placement.Options{IsCenter: true})
	if !ok {
		observability.Layout().OnLayout(context.Background(), 0, len(peripherals)+1, time.Since(start))
		return Arrangement{}
	}

	tiles := make([]Tile, 0, len(peripherals)+1)
	tiles = append(tiles, Tile{Photo: center, Rect: centerRect, IsCenter: true})
	placed := make([]geom.Rect, 0, len(peripherals))
	omitted := 0

	for _, p := range peripherals {
		if p.ID == center.ID {
			continue
		}
		r, ok := l.Engine.Place(tile, vp, placement.Options{
			Existing:    placed,
			Center:      &centerRect,
			MaxAttempts: l.Config.MaxAttempts,
		})
		if !ok {
			omitted++
			continue
		}
		placed = append(placed, r)
		tiles = append(tiles, Tile{Photo: p, Rect: r, Tilt: l.tilt()})
	}

	observability.Layout().OnLayout(context.Background(), len(tiles), omitted, time.Since(start))
	return Arrangement{Tiles: tiles}
}

// tilt draws after the tile's placement, from the engine's source.
func (l *Layouter) tilt() float64 {
	if l.Config.MaxTilt <= 0 {
		return 0
	}
	return (l.Engine.Rand().Float64()*2 - 1) * l.Config.MaxTilt
}
