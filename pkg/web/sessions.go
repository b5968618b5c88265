package web

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/session"
	"github.com/matzehuels/collage/pkg/web/views"
)

// maxViewport bounds client-reported sizes.
const maxViewport = 16384

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type createRequest struct {
	viewportRequest
	Query string `json:"query"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type selectRequest struct {
	PhotoID string `json:"photo_id"`
}

type stateResponse struct {
	ID            string         `json:"id"`
	Query         string         `json:"query"`
	CenterID      string         `json:"center_id,omitempty"`
	Phase         session.Phase  `json:"phase"`
	Loading       bool           `json:"loading"`
	Transitioning bool           `json:"transitioning"`
	Status        session.Status `json:"status,omitempty"`
	Error         string         `json:"error,omitempty"`
	Tiles         []collage.Tile `json:"tiles"`
}

func toResponse(id string, st session.State) stateResponse {
	tiles := st.Arrangement.Tiles
	if tiles == nil {
		tiles = []collage.Tile{}
	}
	return stateResponse{
		ID:            id,
		Query:         st.Query,
		CenterID:      st.CenterID,
		Phase:         st.Phase(),
		Loading:       st.Loading,
		Transitioning: st.Transitioning,
		Status:        st.Status,
		Error:         st.Error(),
		Tiles:         tiles,
	}
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.startSession(r.Context(), s.opts.Viewport, r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/s/"+sess.ID, http.StatusSeeOther)
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.render(w, r, views.PageView(views.Page{
		SessionID: sess.ID,
		State:     sess.State(),
		Debounce:  int(s.opts.Debounce.Milliseconds()),
		ExitDelay: int(s.opts.ExitDelay.Milliseconds()),
	}))
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	size := s.opts.Viewport
	if req.Width != 0 || req.Height != 0 {
		var err error
		if size, err = req.size(); err != nil {
			writeError(w, err)
			return
		}
	}
	sess, st, err := s.startSession(r.Context(), size, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(sess.ID, st))
}

func (s *Server) startSession(ctx context.Context, size geom.Size, query string) (*session.Session, session.State, error) {
	if query == "" {
		query = s.opts.InitialQuery
	}
	sess := s.newSession(size)
	st := sess.Do(func(r *session.Runner) session.State { return r.Start(ctx, query) })
	if err := s.opts.Store.Set(ctx, sess); err != nil {
		return nil, session.State{}, err
	}
	s.logger.Info("session started", "session", sess.ID, "query", query, "tiles", st.Arrangement.Len())
	return sess, st, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, toResponse(sess.ID, sess.State()))
	}
}

func (s *Server) fragment(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.render(w, r, views.CollageView(sess.State()))
	}
}

func (s *Server) submitQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.QuerySubmitted{Query: req.Query})
}

func (s *Server) selectTile(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var found bool
	st := sess.Do(func(run *session.Runner) session.State {
		tile, ok := run.Controller.State().Arrangement.Find(req.PhotoID)
		if !ok {
			return run.Controller.State()
		}
		found = true
		return run.Dispatch(r.Context(), session.TileClicked{Photo: tile.Photo})
	})
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "photo %q is not in the collage", req.PhotoID))
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess.ID, st))
}

func (s *Server) exitCompleted(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.ExitCompleted{})
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if !decode(w, r, &req) {
		return
	}
	size, err := req.size()
	if err != nil {
		writeError(w, err)
		return
	}
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess.ID, sess.Resize(r.Context(), size)))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev session.Event) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	st := sess.Do(func(run *session.Runner) session.State { return run.Dispatch(r.Context(), ev) })
	writeJSON(w, http.StatusOK, toResponse(sess.ID, st))
}

// lookup finds the session named in the URL and refreshes its expiry.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.opts.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if err := s.opts.Store.Set(r.Context(), sess); err != nil {
		reqLogger(s.logger, r).Warn("session refresh failed", "session", sess.ID, "error", err)
	}
	return sess, true
}

func (v viewportRequest) size() (geom.Size, error) {
	if err := errors.ValidateDimension("width", v.Width); err != nil {
		return geom.Size{}, err
	}
	if err := errors.ValidateDimension("height", v.Height); err != nil {
		return geom.Size{}, err
	}
	if v.Width > maxViewport || v.Height > maxViewport {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "viewport larger than %d pixels", maxViewport)
	}
	return geom.Size{Width: v.Width, Height: v.Height}, nil
}

// decode reads an optional JSON body into v. An empty body leaves v zero.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v)
	if err != nil && !stderrors.Is(err, io.EOF) {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func reqLogger(l *log.Logger, r *http.Request) *log.Logger {
	return l.With("request_id", middleware.GetReqID(r.Context()))
}
