package placement

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/collage/pkg/geom"
)

// DefaultMaxAttempts is the number of random candidates tried when
// Options.MaxAttempts is zero.
const DefaultMaxAttempts = 50

// NoAvoidance disables the overlap search: Place returns a single raw random
// position without looking at the avoidance set.
const NoAvoidance = -1

// Rand is the source of uniform values in [0, 1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Options control a single Place call.
type Options struct {
	// IsCenter places the tile at the exact viewport center.
	IsCenter bool

	// Existing are the rectangles accepted so far in this layout pass.
	Existing []geom.Rect

	// Center is the already placed center rectangle, avoided when non-nil.
	Center *geom.Rect

	// MaxAttempts bounds the random search. Zero selects
	// DefaultMaxAttempts; a negative value behaves like NoAvoidance.
	MaxAttempts int
}

func (o Options) attempts() int {
	if o.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return o.MaxAttempts
}

func (o Options) avoidSet() []geom.Rect {
	if o.Center == nil {
		return o.Existing
	}
	set := make([]geom.Rect, 0, len(o.Existing)+1)
	set = append(set, o.Existing...)
	return append(set, *o.Center)
}

// Engine places tiles. An Engine is not safe for concurrent use because it
// owns its random source.
type Engine struct {
	rng Rand
}

// NewEngine creates an engine drawing from rng. If rng is nil, a PCG source
// with a random seed is used.
func NewEngine(rng Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rng: rng}
}

// NewSeededEngine creates an engine with a deterministic PCG source.
func NewSeededEngine(seed uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Rand exposes the engine's random source so that callers drawing
// per-tile decorations share the same sequence.
func (e *Engine) Rand() Rand { return e.rng }

// Place computes a position for a tile of the given size. It returns false
// when the tile cannot fit: a non-positive dimension, a tile larger than the
// viewport, or an unavailable viewport. Otherwise it always returns a
// rectangle fully inside the viewport.
func (e *Engine) Place(tile geom.Size, vp Viewport, opts Options) (geom.Rect, bool) {
	if vp == nil {
		return geom.Rect{}, false
	}
	size, ok := vp.Size()
	if !ok {
		return geom.Rect{}, false
	}
	if tile.Width <= 0 || tile.Height <= 0 {
		return geom.Rect{}, false
	}
	if tile.Width > size.Width || tile.Height > size.Height {
		return geom.Rect{}, false
	}

	maxX := size.Width - tile.Width
	maxY := size.Height - tile.Height

	if opts.IsCenter {
		return geom.NewRect(maxX/2, maxY/2, tile), true
	}

	attempts := opts.attempts()
	if attempts <= 0 {
		return e.candidate(tile, maxX, maxY), true
	}

	avoid := opts.avoidSet()
	var best geom.Rect
	minOverlap := math.Inf(1)

	for range attempts {
		r := e.candidate(tile, maxX, maxY)
		overlap := geom.TotalOverlap(r, avoid)
		if overlap < minOverlap {
			minOverlap = overlap
			best = r
			if minOverlap == 0 {
				break
			}
		}
	}
	return best, true
}

func (e *Engine) candidate(tile geom.Size, maxX, maxY float64) geom.Rect {
	x := e.rng.Float64() * maxX
	y := e.rng.Float64() * maxY
	return geom.NewRect(x, y, tile)
}
