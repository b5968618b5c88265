package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/photo"
)

type searchResponse struct {
	Data []photo.Photo `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// searchProxy answers GET /api?query=. per_page is accepted for
// compatibility; the provider's configured page size applies.
func (s *Server) searchProxy(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No query"})
		return
	}

	photos, err := s.opts.Searcher.Search(r.Context(), query)
	if err != nil {
		reqLogger(s.logger, r).Error("search proxy failed", "query", query, "error", err)
		switch {
		case errors.Is(err, errors.ErrCodeInvalidQuery):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.UserMessage(causeOf(err))})
		case errors.Is(err, errors.ErrCodeInvalidPhoto):
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Data shape mismatch"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch data"})
		}
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Data: photos})
}

// causeOf unwraps a FETCH_FAILURE to the error it reports.
func causeOf(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Code == errors.ErrCodeFetchFailure && e.Cause != nil {
		return e.Cause
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status and a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorResponse{Error: errors.UserMessage(err)})
}
