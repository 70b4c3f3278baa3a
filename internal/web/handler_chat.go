package web

import (
	"net/http"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.search.Search(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, err, "chat search")
		return
	}

	if s.metrics != nil {
		s.metrics.ChatQueries.WithLabelValues(string(result.Intent)).Inc()
	}
	result.Photos = nonNil(result.Photos)
	writeJSON(w, http.StatusOK, result)
}
