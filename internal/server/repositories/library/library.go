// Package library stores the catalogue (authors, books, students) and the
// circulation ledger (transactions) of the development server, and answers
// the dashboard queries. Records use the wire types shared with the client.
package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/libdesk/internal/common"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrOutOfStock is returned when a borrow hits a book with no copies left.
	ErrOutOfStock = errors.New("book is out of stock")
	// ErrConstraint reports a missing reference or a record still referenced elsewhere.
	ErrConstraint = errors.New("constraint violation")
)

// dbError classifies err: no rows become common.ErrorNotFound, SQLite
// constraint failures ErrConstraint. Everything else is wrapped as a db error.
func dbError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %s", ErrConstraint, se.Error())
	}
	return fmt.Errorf("db error: %w", err)
}

// affected turns a zero-row delete into common.ErrorNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return dbError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows *sql.Rows, err error, scan func(scanner) (T, error)) ([]T, error) {
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
