package session

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/photo"
	"github.com/matzehuels/collage/pkg/placement"
)

// Query defaults.
const (
	DefaultInitialQuery = "japanese landscape"
	DefaultQuery        = "japanese aesthetic"
	DefaultQueryWords   = 3
)

// Config controls how follow-up queries are derived from a clicked photo.
type Config struct {
	QueryWords   int    // leading description words used as the next query
	DefaultQuery string // used when the description is null or blank
}

// DefaultConfig returns three words and "japanese aesthetic".
func DefaultConfig() Config {
	return Config{QueryWords: DefaultQueryWords, DefaultQuery: DefaultQuery}
}

// Controller is the session state machine. It is not safe for concurrent
// use; callers serialize events.
type Controller struct {
	Logger *log.Logger

	layouter *collage.Layouter
	viewport placement.Viewport
	cfg      Config
	state    State

	// Photos currently on display: the center and the rest of the result set.
	center      *photo.Photo
	peripherals []photo.Photo

	seq             uint64
	awaitSearch     uint64
	awaitPeripheral uint64
}

// NewController creates an idle controller that lays out tiles with l inside
// vp. The viewport is measured on every layout pass. A nil layouter uses
// collage.DefaultConfig.
func NewController(l *collage.Layouter, vp placement.Viewport, cfg Config) *Controller {
	if cfg.QueryWords <= 0 {
		cfg.QueryWords = DefaultQueryWords
	}
	if cfg.DefaultQuery == "" {
		cfg.DefaultQuery = DefaultQuery
	}
	if vp == nil {
		vp = placement.Unavailable
	}
	if l == nil {
		l = collage.NewLayouter(nil, collage.DefaultConfig())
	}
	return &Controller{
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		layouter: l,
		viewport: vp,
		cfg:      cfg,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Arrangement = s.Arrangement.Clone()
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

// Handle applies ev and returns the fetches the driver must perform.
func (c *Controller) Handle(ev Event) []Fetch {
	from := c.state.Phase()
	effects := c.handle(ev)
	if to := c.state.Phase(); to != from {
		c.Logger.Debug("session transition", "from", from, "to", to)
		observability.Layout().OnTransition(context.Background(), string(from), string(to))
	}
	return effects
}

func (c *Controller) handle(ev Event) []Fetch {
	switch ev := ev.(type) {
	case QuerySubmitted:
		return c.querySubmitted(ev)
	case SearchResolved:
		c.searchResolved(ev)
	case TileClicked:
		c.tileClicked(ev)
	case ExitCompleted:
		return c.exitCompleted()
	case PeripheralsResolved:
		c.peripheralsResolved(ev)
	case ViewportChanged:
		c.relayout()
	}
	return nil
}

func (c *Controller) querySubmitted(ev QuerySubmitted) []Fetch {
	q := strings.TrimSpace(ev.Query)
	if c.state.Transitioning {
		c.Logger.Debug("query ignored during transition", "query", q)
		return nil
	}
	if q == "" {
		return nil
	}
	c.seq++
	c.awaitSearch = c.seq
	c.state.Query = q
	c.state.Loading = true
	return []Fetch{{Seq: c.seq, Query: q, Kind: KindSearch}}
}

func (c *Controller) searchResolved(ev SearchResolved) {
	if c.awaitSearch == 0 || ev.Seq != c.awaitSearch {
		c.Logger.Debug("dropped stale search result", "seq", ev.Seq, "want", c.awaitSearch)
		return
	}
	c.awaitSearch = 0
	c.state.Loading = false

	if ev.Err != nil || len(ev.Photos) == 0 {
		c.clear()
		if ev.Err != nil {
			c.state.Status = StatusFailed
			c.state.Err = ev.Err
			c.Logger.Warn("search failed", "query", c.state.Query, "error", ev.Err)
		} else {
			c.state.Status = StatusEmpty
			c.state.Err = nil
		}
		return
	}

	i := photo.Index(ev.Photos, c.state.CenterID)
	if i < 0 {
		i = 0
	}
	center := ev.Photos[i]
	c.show(center, photo.Without(ev.Photos, center.ID))
	c.state.CenterID = center.ID
	c.state.Status = StatusOK
	c.state.Err = nil
}

func (c *Controller) tileClicked(ev TileClicked) {
	if c.state.Transitioning {
		c.Logger.Debug("click ignored during transition", "photo", ev.Photo.ID)
		return
	}
	if ev.Photo.ID == c.state.CenterID {
		return
	}
	// An in-flight search would re-populate the collapsed arrangement.
	c.awaitSearch = 0
	c.state.Loading = false

	clicked := ev.Photo
	c.show(clicked, nil)
	c.state.Pending = &clicked
	c.state.PendingQuery = clicked.QueryFromDescription(c.cfg.QueryWords, c.cfg.DefaultQuery)
	c.state.Transitioning = true
}

func (c *Controller) exitCompleted() []Fetch {
	if !c.state.Transitioning || c.state.Pending == nil || c.awaitPeripheral != 0 {
		return nil
	}
	c.state.CenterID = c.state.Pending.ID
	c.seq++
	c.awaitPeripheral = c.seq
	c.state.Loading = true
	return []Fetch{{Seq: c.seq, Query: c.state.PendingQuery, Kind: KindPeripherals}}
}

func (c *Controller) peripheralsResolved(ev PeripheralsResolved) {
	if c.awaitPeripheral == 0 || ev.Seq != c.awaitPeripheral {
		c.Logger.Debug("dropped stale peripherals", "seq", ev.Seq, "want", c.awaitPeripheral)
		return
	}
	center := *c.state.Pending
	c.awaitPeripheral = 0
	c.state.Pending = nil
	c.state.PendingQuery = ""
	c.state.Loading = false
	c.state.Transitioning = false

	if ev.Err != nil {
		c.Logger.Warn("peripheral search failed", "center", center.ID, "error", ev.Err)
		c.show(center, nil)
		c.state.Status = StatusFailed
		c.state.Err = ev.Err
		return
	}
	c.show(center, photo.Without(ev.Photos, center.ID))
	c.state.Status = StatusOK
	c.state.Err = nil
}

// show replaces the displayed photos and lays them out.
func (c *Controller) show(center photo.Photo, peripherals []photo.Photo) {
	c.center = &center
	c.peripherals = peripherals
	c.relayout()
}

func (c *Controller) clear() {
	c.center = nil
	c.peripherals = nil
	c.state.CenterID = ""
	c.state.Arrangement = collage.Arrangement{}
}

func (c *Controller) relayout() {
	if c.center == nil {
		c.state.Arrangement = collage.Arrangement{}
		return
	}
	c.state.Arrangement = c.layouter.Layout(c.viewport, *c.center, c.peripherals)
}
