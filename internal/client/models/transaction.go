package models

import "time"

// TransactionType is either TransactionBorrow or TransactionReturn.
type TransactionType string

const (
	TransactionBorrow TransactionType = "borrow"
	TransactionReturn TransactionType = "return"
)

// DateLayout is the wire format of borrowed and due dates.
const DateLayout = "2006-01-02"

// Transaction records a book leaving or coming back to the library.
// No state machine is enforced client side: the server owns stock checks.
type Transaction struct {
	TransactionID int64           `json:"transaction_id"`
	StudentID     int64           `json:"student"`
	UserID        int64           `json:"user"`
	BookID        int64           `json:"book"`
	Type          TransactionType `json:"transaction_type"`
	BorrowedDate  string          `json:"borrowed_date"`
	DueDate       string          `json:"due_date"`
}

func (t Transaction) ID() int64 { return t.TransactionID }

type TransactionInput struct {
	StudentID    int64           `json:"student" validate:"required,gt=0"`
	UserID       int64           `json:"user" validate:"required,gt=0"`
	BookID       int64           `json:"book" validate:"required,gt=0"`
	Type         TransactionType `json:"transaction_type" validate:"required,oneof=borrow return"`
	BorrowedDate string          `json:"borrowed_date" validate:"required,datetime=2006-01-02"`
	DueDate      string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// NewIssue returns the issuing form defaults: a borrow dated today.
func NewIssue(now time.Time) TransactionInput {
	return TransactionInput{
		Type:         TransactionBorrow,
		BorrowedDate: now.Format(DateLayout),
	}
}

type TransactionPatch struct {
	StudentID    *int64           `json:"student,omitempty" validate:"omitempty,gt=0"`
	UserID       *int64           `json:"user,omitempty" validate:"omitempty,gt=0"`
	BookID       *int64           `json:"book,omitempty" validate:"omitempty,gt=0"`
	Type         *TransactionType `json:"transaction_type,omitempty" validate:"omitempty,oneof=borrow return"`
	BorrowedDate *string          `json:"borrowed_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate      *string          `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (p TransactionPatch) Empty() bool {
	return p.StudentID == nil && p.UserID == nil && p.BookID == nil &&
		p.Type == nil && p.BorrowedDate == nil && p.DueDate == nil
}
