package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// resource is the CRUD surface shared by the library repositories.
type resource[T, In, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, p P) (T, error)
	Delete(ctx context.Context, id int64) error
}

// mountResource serves res under prefix: GET and POST on "prefix/",
// PUT and DELETE on "prefix/{id}/".
func mountResource[T, In, P any](r chi.Router, prefix string, s *Server, res resource[T, In, P]) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			items, err := res.List(r.Context())
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var in In
			if err := decode(r, &in); err != nil {
				s.handleError(w, r, err)
				return
			}
			created, err := res.Create(r.Context(), in)
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, created)
		})

		r.Put("/{id}/", func(w http.ResponseWriter, r *http.Request) {
			id, err := pathID(r)
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			var p P
			if err := decode(r, &p); err != nil {
				s.handleError(w, r, err)
				return
			}
			updated, err := res.Update(r.Context(), id, p)
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, updated)
		})

		r.Delete("/{id}/", func(w http.ResponseWriter, r *http.Request) {
			id, err := pathID(r)
			if err != nil {
				s.handleError(w, r, err)
				return
			}
			if err := res.Delete(r.Context(), id); err != nil {
				s.handleError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}
