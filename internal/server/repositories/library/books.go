package library

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
)

type BookRepository struct {
	db dbx.DBTX
}

func NewBookRepository(db dbx.DBTX) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = `id, title, author_id, genre, isbn, quantity`

func scanBook(s scanner) (models.Book, error) {
	var b models.Book
	if err := s.Scan(&b.BookID, &b.Title, &b.AuthorID, &b.Genre, &b.ISBN, &b.Quantity); err != nil {
		return models.Book{}, dbError(err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	return collect(rows, err, scanBook)
}

func (r *BookRepository) Get(ctx context.Context, id int64) (models.Book, error) {
	return scanBook(r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
}

func (r *BookRepository) Create(ctx context.Context, in models.BookInput) (models.Book, error) {
	query := `
		INSERT INTO books (title, author_id, genre, isbn, quantity)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + bookColumns
	return scanBook(r.db.QueryRowContext(ctx, query, in.Title, in.AuthorID, in.Genre, in.ISBN, in.Quantity))
}

func (r *BookRepository) Update(ctx context.Context, id int64, p models.BookPatch) (models.Book, error) {
	query := `
		UPDATE books SET
			title     = COALESCE(?, title),
			author_id = COALESCE(?, author_id),
			genre     = COALESCE(?, genre),
			isbn      = COALESCE(?, isbn),
			quantity  = COALESCE(?, quantity)
		WHERE id = ?
		RETURNING ` + bookColumns
	return scanBook(r.db.QueryRowContext(ctx, query, p.Title, p.AuthorID, p.Genre, p.ISBN, p.Quantity, id))
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id))
}

// AdjustQuantity adds delta copies to book id. A decrement below zero fails
// with ErrOutOfStock and leaves the row unchanged.
func (r *BookRepository) AdjustQuantity(ctx context.Context, id int64, delta int) error {
	err := affected(r.db.ExecContext(ctx,
		`UPDATE books SET quantity = quantity + ? WHERE id = ? AND quantity + ? >= 0`, delta, id, delta))
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrOutOfStock
}
