package library

import (
	"context"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
)

type DashboardRepository struct {
	db dbx.DBTX
}

func NewDashboardRepository(db dbx.DBTX) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary counts borrow and return transactions, copies in stock and students.
func (r *DashboardRepository) Summary(ctx context.Context) (models.Summary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE transaction_type = 'borrow'),
			(SELECT COUNT(*) FROM transactions WHERE transaction_type = 'return'),
			(SELECT COALESCE(SUM(quantity), 0) FROM books),
			(SELECT COUNT(*) FROM students)
	`
	var s models.Summary
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.TotalBorrowedBooks, &s.TotalReturnedBooks, &s.TotalBooks, &s.TotalStudents)
	if err != nil {
		return models.Summary{}, dbError(err)
	}
	return s, nil
}

// Overdue lists borrow transactions due before today (YYYY-MM-DD).
func (r *DashboardRepository) Overdue(ctx context.Context, today string) ([]models.OverdueBorrower, error) {
	query := `
		SELECT t.id, s.name
		FROM transactions t
		JOIN students s ON s.id = t.student_id
		WHERE t.transaction_type = 'borrow' AND t.due_date < ?
		ORDER BY t.due_date, t.id
	`
	rows, err := r.db.QueryContext(ctx, query, today)
	return collect(rows, err, func(s scanner) (models.OverdueBorrower, error) {
		var o models.OverdueBorrower
		if err := s.Scan(&o.TransactionID, &o.StudentName); err != nil {
			return models.OverdueBorrower{}, dbError(err)
		}
		return o, nil
	})
}
