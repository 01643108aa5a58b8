package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/library"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/repomanager"
)

// LibraryService hands out the catalogue repositories and applies stock
// rules to the circulation ledger.
type LibraryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewLibraryService(db *sql.DB, m repomanager.RepositoryManager) *LibraryService {
	return &LibraryService{db: db, repomanager: m, now: time.Now}
}

func (s *LibraryService) Authors() *library.AuthorRepository   { return s.repomanager.Authors(s.db) }
func (s *LibraryService) Books() *library.BookRepository       { return s.repomanager.Books(s.db) }
func (s *LibraryService) Students() *library.StudentRepository { return s.repomanager.Students(s.db) }

func (s *LibraryService) Transactions() *TransactionService {
	return &TransactionService{TransactionRepository: s.repomanager.Transactions(s.db), svc: s}
}

func (s *LibraryService) Summary(ctx context.Context) (models.Summary, error) {
	return s.repomanager.Dashboard(s.db).Summary(ctx)
}

// Overdue lists borrows whose due date is before today.
func (s *LibraryService) Overdue(ctx context.Context) ([]models.OverdueBorrower, error) {
	return s.repomanager.Dashboard(s.db).Overdue(ctx, s.now().Format(models.DateLayout))
}

// TransactionService is the transaction repository with a stock-aware Create.
type TransactionService struct {
	*library.TransactionRepository
	svc *LibraryService
}

// Create records in and moves one copy of the book: a borrow takes it off
// the shelf (library.ErrOutOfStock when none is left), a return puts it back.
// Both writes share one database transaction.
func (t *TransactionService) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	m := t.svc.repomanager
	return dbx.WithTxValue(ctx, t.svc.db, func(ctx context.Context, tx dbx.DBTX) (models.Transaction, error) {
		delta := 1
		if in.Type == models.TransactionBorrow {
			delta = -1
		}
		err := m.Books(tx).AdjustQuantity(ctx, in.BookID, delta)
		if errors.Is(err, common.ErrorNotFound) {
			return models.Transaction{}, fmt.Errorf("%w: book %d does not exist", library.ErrConstraint, in.BookID)
		}
		if err != nil {
			return models.Transaction{}, err
		}
		return m.Transactions(tx).Create(ctx, in)
	})
}
