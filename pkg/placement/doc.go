// Package placement positions fixed-size tiles inside a viewport.
//
// The [Engine] places one tile per call. A center tile is placed
// deterministically in the middle of the viewport; every other tile is placed
// by a bounded random search that minimizes the total overlap area with a
// set of rectangles to avoid:
//
//	eng := placement.NewEngine(nil)
//	vp := placement.Fixed(geom.Size{Width: 1000, Height: 800})
//	tile := geom.Size{Width: 250, Height: 250}
//
//	center, _ := eng.Place(tile, vp, placement.Options{IsCenter: true})
//	r, ok := eng.Place(tile, vp, placement.Options{Center: &center})
//
// The search draws up to MaxAttempts uniform positions and stops at the first
// candidate with zero overlap. When no candidate is overlap-free, the one
// with the lowest total overlap is returned; ties keep the earliest
// candidate. This is a greedy stopping rule and callers rely on it: it is
// not a packing optimizer.
//
// Place reports false ("cannot fit") when the tile has a non-positive
// dimension, is larger than the viewport, or the viewport cannot be
// measured. These are ordinary outcomes and callers omit the tile.
package placement
