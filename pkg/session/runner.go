package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/photo"
	"github.com/matzehuels/collage/pkg/search"
)

// Perform runs one fetch and returns the event reporting its result.
func Perform(ctx context.Context, s search.Searcher, f Fetch) Event {
	photos, err := s.Search(ctx, f.Query)
	return f.Resolve(photos, err)
}

// Runner drives a Controller by performing its fetches synchronously.
type Runner struct {
	Controller *Controller
	Searcher   search.Searcher
	Logger     *log.Logger
}

// NewRunner creates a runner. A nil logger uses the controller's.
func NewRunner(c *Controller, s search.Searcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = c.Logger
	}
	return &Runner{Controller: c, Searcher: s, Logger: logger}
}

// Dispatch applies ev and every fetch it causes, then returns the resulting
// state. Fetch results are fed back in order until no effects remain.
func (r *Runner) Dispatch(ctx context.Context, ev Event) State {
	queue := r.Controller.Handle(ev)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		start := time.Now()
		res := Perform(ctx, r.Searcher, f)
		r.Logger.Debug("fetch performed", "kind", f.Kind, "seq", f.Seq, "query", f.Query, "duration", time.Since(start))
		queue = append(queue, r.Controller.Handle(res)...)
	}
	return r.Controller.State()
}

// Start submits the initial query.
func (r *Runner) Start(ctx context.Context, query string) State {
	if query == "" {
		query = DefaultInitialQuery
	}
	return r.Dispatch(ctx, QuerySubmitted{Query: query})
}

// Pivot clicks p and completes the exit immediately, which is what a
// driver without animations does.
func (r *Runner) Pivot(ctx context.Context, p photo.Photo) State {
	r.Dispatch(ctx, TileClicked{Photo: p})
	return r.Dispatch(ctx, ExitCompleted{})
}
