package library

import (
	"context"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
)

type TransactionRepository struct {
	db dbx.DBTX
}

func NewTransactionRepository(db dbx.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, student_id, user_id, book_id, transaction_type, borrowed_date, due_date`

func scanTransaction(s scanner) (models.Transaction, error) {
	var t models.Transaction
	if err := s.Scan(&t.TransactionID, &t.StudentID, &t.UserID, &t.BookID, &t.Type, &t.BorrowedDate, &t.DueDate); err != nil {
		return models.Transaction{}, dbError(err)
	}
	return t, nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
	return collect(rows, err, scanTransaction)
}

func (r *TransactionRepository) Get(ctx context.Context, id int64) (models.Transaction, error) {
	return scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
}

func (r *TransactionRepository) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	query := `
		INSERT INTO transactions (student_id, user_id, book_id, transaction_type, borrowed_date, due_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRowContext(ctx, query,
		in.StudentID, in.UserID, in.BookID, string(in.Type), in.BorrowedDate, in.DueDate))
}

func (r *TransactionRepository) Update(ctx context.Context, id int64, p models.TransactionPatch) (models.Transaction, error) {
	var typ *string
	if p.Type != nil {
		s := string(*p.Type)
		typ = &s
	}
	query := `
		UPDATE transactions SET
			student_id       = COALESCE(?, student_id),
			user_id          = COALESCE(?, user_id),
			book_id          = COALESCE(?, book_id),
			transaction_type = COALESCE(?, transaction_type),
			borrowed_date    = COALESCE(?, borrowed_date),
			due_date         = COALESCE(?, due_date)
		WHERE id = ?
		RETURNING ` + transactionColumns
	return scanTransaction(r.db.QueryRowContext(ctx, query,
		p.StudentID, p.UserID, p.BookID, typ, p.BorrowedDate, p.DueDate, id))
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id))
}
