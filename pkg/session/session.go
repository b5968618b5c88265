// Package session drives a collage browsing session.
//
// A [Controller] is a finite state machine over three phases:
//
//	idle ──QuerySubmitted──▶ loading ──SearchResolved──▶ idle
//	idle ──TileClicked──▶ transitioning ──ExitCompleted──▶ transitioning+loading
//	transitioning+loading ──PeripheralsResolved──▶ idle
//
// The controller never performs I/O. [Controller.Handle] applies one [Event]
// and returns the [Fetch] effects the driver must perform; the driver feeds
// each result back as a SearchResolved or PeripheralsResolved event carrying
// the effect's sequence number. Results whose sequence number is no longer
// awaited are dropped, so a slow response can never overwrite a newer one.
//
// [Runner] performs effects synchronously and is used by the HTTP server and
// one-shot commands. The terminal browser turns effects into asynchronous
// commands instead.
package session

import (
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/photo"
)

// Phase is the controller's coarse state.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLoading       Phase = "loading"
	PhaseTransitioning Phase = "transitioning"
)

// Status is the outcome of the most recent search.
type Status string

const (
	StatusNone   Status = ""
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// State is a snapshot of a session. CenterID is empty when no center is
// shown. During a transition CenterID still names the previous center until
// the exit animation completes; Pending is the clicked photo.
type State struct {
	Query         string              `json:"query"`
	CenterID      string              `json:"center_id,omitempty"`
	Arrangement   collage.Arrangement `json:"arrangement"`
	Loading       bool                `json:"loading"`
	Transitioning bool                `json:"transitioning"`
	Pending       *photo.Photo        `json:"pending,omitempty"`
	PendingQuery  string              `json:"pending_query,omitempty"`
	Status        Status              `json:"status,omitempty"`
	Err           error               `json:"-"`
}

// Phase derives the coarse state from the flags.
func (s State) Phase() Phase {
	switch {
	case s.Transitioning:
		return PhaseTransitioning
	case s.Loading:
		return PhaseLoading
	default:
		return PhaseIdle
	}
}

// Error returns the failure message, or "".
func (s State) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
