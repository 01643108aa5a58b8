package httpapi

import "net/http"

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.library.Summary(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := s.library.Overdue(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overdue)
}
