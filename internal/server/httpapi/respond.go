package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/library"
)

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

// decode reads a JSON body into dst and validates it. Unknown fields are
// rejected.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return models.Validate(dst)
}

var errBadRequest = errors.New("malformed request body")

// handleError maps service and validation errors onto responses.
// Validation failures answer with a field -> message object.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrNothingToUpdate),
		errors.Is(err, library.ErrOutOfStock),
		errors.Is(err, library.ErrConstraint):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
