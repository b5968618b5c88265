package placement

import "github.com/matzehuels/collage/pkg/geom"

// Viewport reports the current drawable size. It is queried on every Place
// call, so implementations should measure rather than cache. ok is false
// when no drawable surface exists yet.
type Viewport interface {
	Size() (size geom.Size, ok bool)
}

// Fixed is a Viewport of constant size.
type Fixed geom.Size

// Size returns the fixed size. A Fixed viewport with a non-positive
// dimension is reported as unavailable.
func (f Fixed) Size() (geom.Size, bool) {
	s := geom.Size(f)
	return s, s.Width > 0 && s.Height > 0
}

// ViewportFunc adapts a function to the Viewport interface.
type ViewportFunc func() (geom.Size, bool)

// Size calls f.
func (f ViewportFunc) Size() (geom.Size, bool) { return f() }

// Unavailable is a Viewport with no drawable surface.
var Unavailable Viewport = ViewportFunc(func() (geom.Size, bool) { return geom.Size{}, false })
