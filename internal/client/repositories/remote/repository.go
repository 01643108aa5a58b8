// Package remote holds the REST repositories: one generic CRUD repository
// per entity plus the dashboard and login endpoints.
package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/libdesk/internal/client/client"
	"github.com/dmitrijs2005/libdesk/internal/client/models"
)

const (
	AuthorPath      = "/author/"
	BookPath        = "/book/"
	StudentPath     = "/student/"
	TransactionPath = "/transaction/"
)

// API is the part of client.Client the repositories need.
type API interface {
	Do(ctx context.Context, r client.Request) error
}

// Repository talks to one fixed collection endpoint:
//
//	GET base/  POST base/  PUT base/{id}/  DELETE base/{id}/
//
// T is the record, In the create body and P the partial update body.
type Repository[T, In, P any] struct {
	api  API
	base string
}

func NewRepository[T, In, P any](api API, base string) *Repository[T, In, P] {
	return &Repository[T, In, P]{api: api, base: base}
}

type (
	AuthorRepository      = Repository[models.Author, models.AuthorInput, models.AuthorPatch]
	BookRepository        = Repository[models.Book, models.BookInput, models.BookPatch]
	StudentRepository     = Repository[models.Student, models.StudentInput, models.StudentPatch]
	TransactionRepository = Repository[models.Transaction, models.TransactionInput, models.TransactionPatch]
)

func NewAuthorRepository(api API) *AuthorRepository {
	return NewRepository[models.Author, models.AuthorInput, models.AuthorPatch](api, AuthorPath)
}

func NewBookRepository(api API) *BookRepository {
	return NewRepository[models.Book, models.BookInput, models.BookPatch](api, BookPath)
}

func NewStudentRepository(api API) *StudentRepository {
	return NewRepository[models.Student, models.StudentInput, models.StudentPatch](api, StudentPath)
}

func NewTransactionRepository(api API) *TransactionRepository {
	return NewRepository[models.Transaction, models.TransactionInput, models.TransactionPatch](api, TransactionPath)
}

func (r *Repository[T, In, P]) Base() string { return r.base }

func (r *Repository[T, In, P]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.api.Do(ctx, client.Request{Method: http.MethodGet, Path: r.base, Result: &out}); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.base, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Repository[T, In, P]) Create(ctx context.Context, in In) (T, error) {
	var out T
	if err := r.api.Do(ctx, client.Request{Method: http.MethodPost, Path: r.base, Body: in, Result: &out}); err != nil {
		return out, fmt.Errorf("create %s: %w", r.base, err)
	}
	return out, nil
}

// Update sends patch and decodes the response onto into. Fields missing from
// the response keep the value into already had.
func (r *Repository[T, In, P]) Update(ctx context.Context, id int64, patch P, into *T) error {
	if err := r.api.Do(ctx, client.Request{Method: http.MethodPut, Path: r.item(id), Body: patch, Result: into}); err != nil {
		return fmt.Errorf("update %s: %w", r.item(id), err)
	}
	return nil
}

func (r *Repository[T, In, P]) Delete(ctx context.Context, id int64) error {
	if err := r.api.Do(ctx, client.Request{Method: http.MethodDelete, Path: r.item(id)}); err != nil {
		return fmt.Errorf("delete %s: %w", r.item(id), err)
	}
	return nil
}

func (r *Repository[T, In, P]) item(id int64) string {
	return fmt.Sprintf("%s%d/", r.base, id)
}
