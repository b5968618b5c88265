package session

import "github.com/matzehuels/collage/pkg/photo"

// Event is an input to Controller.Handle.
type Event interface {
	event()
}

// QuerySubmitted is a typed (already debounced) query.
type QuerySubmitted struct {
	Query string
}

// SearchResolved carries the result of a KindSearch fetch.
type SearchResolved struct {
	Seq    uint64
	Photos []photo.Photo
	Err    error
}

// TileClicked reports a click on a tile.
type TileClicked struct {
	Photo photo.Photo
}

// ExitCompleted reports that the exit animation of the collapsed
// arrangement has finished.
type ExitCompleted struct{}

// PeripheralsResolved carries the result of a KindPeripherals fetch.
type PeripheralsResolved struct {
	Seq    uint64
	Photos []photo.Photo
	Err    error
}

// ViewportChanged reports that the drawable surface was resized.
type ViewportChanged struct{}

func (QuerySubmitted) event()      {}
func (SearchResolved) event()      {}
func (TileClicked) event()         {}
func (ExitCompleted) event()       {}
func (PeripheralsResolved) event() {}
func (ViewportChanged) event()     {}

// FetchKind tells the driver which event to report a fetch result with.
type FetchKind int

const (
	KindSearch      FetchKind = iota // reply with SearchResolved
	KindPeripherals                  // reply with PeripheralsResolved
)

func (k FetchKind) String() string {
	if k == KindPeripherals {
		return "peripherals"
	}
	return "search"
}

// Fetch asks the driver to search for Query and report the result with Seq.
type Fetch struct {
	Seq   uint64
	Query string
	Kind  FetchKind
}

// Resolve builds the event that reports the fetch's result.
func (f Fetch) Resolve(photos []photo.Photo, err error) Event {
	if f.Kind == KindPeripherals {
		return PeripheralsResolved{Seq: f.Seq, Photos: photos, Err: err}
	}
	return SearchResolved{Seq: f.Seq, Photos: photos, Err: err}
}
