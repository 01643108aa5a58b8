// Package repomanager provides the SQLite RepositoryManager of the development
// server, wiring repository constructors and goose migrations together.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/libdesk/internal/dbx"
	"github.com/dmitrijs2005/libdesk/internal/filex"
	"github.com/dmitrijs2005/libdesk/internal/server/migrations"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/library"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/users"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Authors(db dbx.DBTX) *library.AuthorRepository {
	return library.NewAuthorRepository(db)
}

func (m *SQLiteRepositoryManager) Books(db dbx.DBTX) *library.BookRepository {
	return library.NewBookRepository(db)
}

func (m *SQLiteRepositoryManager) Students(db dbx.DBTX) *library.StudentRepository {
	return library.NewStudentRepository(db)
}

func (m *SQLiteRepositoryManager) Transactions(db dbx.DBTX) *library.TransactionRepository {
	return library.NewTransactionRepository(db)
}

func (m *SQLiteRepositoryManager) Dashboard(db dbx.DBTX) *library.DashboardRepository {
	return library.NewDashboardRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded server migrations to db.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens the SQLite database at path (or ":memory:") with foreign keys
// enforced, and migrates it.
func (m *SQLiteRepositoryManager) Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path, 0o750); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: ":memory:" stays a single database and writers never race
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
