package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLiteRepository(db), mock, db
}

const (
	insertQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*email,\s*first_name,\s*last_name\)\s*VALUES\s*\(\?,\s*\?,\s*\?,\s*\?,\s*\?\)\s*RETURNING\s+id\s*$`
	byLogin     = `(?s)^\s*SELECT\s+id,\s*username,\s*password_hash.*FROM\s+users\s+WHERE\s+username\s*=\s*\?\s*$`
	byID        = `(?s)^\s*SELECT\s+id,\s*username,\s*password_hash.*FROM\s+users\s+WHERE\s+id\s*=\s*\?\s*$`
)

var userColumns = []string{"id", "username", "password_hash", "email", "first_name", "last_name"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash", "a@x.io", "Alice", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	u := &models.User{UserName: "alice", PasswordHash: "hash", Email: "a@x.io", FirstName: "Alice"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.UserName != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash", "", "", "").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byLogin).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "hash", "", "", ""))

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByLogin error: %v", err)
	}
	if got.ID != 1 || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byLogin).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byID).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(7, "bob", "h", "b@x.io", "Bob", "Smith"))
	mock.ExpectQuery(byID).
		WithArgs(int64(8)).
		WillReturnError(errors.New("db err"))

	got, err := repo.GetUserByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.UserName != "bob" || got.LastName != "Smith" {
		t.Fatalf("unexpected user: %+v", got)
	}

	_, err = repo.GetUserByID(context.Background(), 8)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
