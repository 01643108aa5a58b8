package library

import (
	"context"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
)

type AuthorRepository struct {
	db dbx.DBTX
}

func NewAuthorRepository(db dbx.DBTX) *AuthorRepository {
	return &AuthorRepository{db: db}
}

const authorColumns = `id, name, bio`

func scanAuthor(s scanner) (models.Author, error) {
	var a models.Author
	if err := s.Scan(&a.AuthorID, &a.Name, &a.Bio); err != nil {
		return models.Author{}, dbError(err)
	}
	return a, nil
}

func (r *AuthorRepository) List(ctx context.Context) ([]models.Author, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	return collect(rows, err, scanAuthor)
}

func (r *AuthorRepository) Get(ctx context.Context, id int64) (models.Author, error) {
	return scanAuthor(r.db.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id))
}

func (r *AuthorRepository) Create(ctx context.Context, in models.AuthorInput) (models.Author, error) {
	query := `
		INSERT INTO authors (name, bio)
		VALUES (?, ?)
		RETURNING ` + authorColumns
	return scanAuthor(r.db.QueryRowContext(ctx, query, in.Name, in.Bio))
}

// Update changes only the fields present in p.
func (r *AuthorRepository) Update(ctx context.Context, id int64, p models.AuthorPatch) (models.Author, error) {
	query := `
		UPDATE authors SET
			name = COALESCE(?, name),
			bio  = COALESCE(?, bio)
		WHERE id = ?
		RETURNING ` + authorColumns
	return scanAuthor(r.db.QueryRowContext(ctx, query, p.Name, p.Bio, id))
}

func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id))
}
