package web

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// render writes component as HTML. The component is rendered into a buffer
// first so a failure never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		reqLogger(s.logger, r).Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
