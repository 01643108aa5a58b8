package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/libdesk/internal/dbx"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/library"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a *sql.DB or a *sql.Tx, so a
// service can run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Authors(db dbx.DBTX) *library.AuthorRepository
	Books(db dbx.DBTX) *library.BookRepository
	Students(db dbx.DBTX) *library.StudentRepository
	Transactions(db dbx.DBTX) *library.TransactionRepository
	Dashboard(db dbx.DBTX) *library.DashboardRepository
}
