package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/fatih/color"
)

var (
	alertColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.Bold)
)

// alert prints a one-line failure notice.
func alert(w io.Writer, format string, args ...any) {
	alertColor.Fprintf(w, "! "+format+"\n", args...)
}

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

// table writes tab-separated rows aligned into columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...any) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...any) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, c)
	}
	fmt.Fprintln(t.tw)
}

func (t *table) flush() { _ = t.tw.Flush() }

// names resolves ids to display names, falling back to "#id".
type names map[int64]string

func (n names) get(id int64) string {
	if s, ok := n[id]; ok && s != "" {
		return s
	}
	return "#" + strconv.FormatInt(id, 10)
}

func renderAuthors(w io.Writer, items []models.Author) {
	t := newTable(w, "ID", "NAME", "BIO")
	for _, a := range items {
		t.row(a.AuthorID, a.Name, a.Bio)
	}
	t.flush()
}

func renderBooks(w io.Writer, items []models.Book, authors names) {
	t := newTable(w, "ID", "TITLE", "AUTHOR", "GENRE", "ISBN", "QTY")
	for _, b := range items {
		t.row(b.BookID, b.Title, authors.get(b.AuthorID), b.Genre, b.ISBN, b.Quantity)
	}
	t.flush()
}

func renderStudents(w io.Writer, items []models.Student) {
	t := newTable(w, "ID", "NAME", "EMAIL", "CONTACT", "DEPARTMENT")
	for _, s := range items {
		t.row(s.StudentID, s.Name, s.Email, s.ContactNumber, s.Department)
	}
	t.flush()
}

func renderTransactions(w io.Writer, items []models.Transaction, students, books names) {
	t := newTable(w, "ID", "TYPE", "STUDENT", "BOOK", "USER", "BORROWED", "DUE")
	for _, tx := range items {
		t.row(tx.TransactionID, tx.Type, students.get(tx.StudentID), books.get(tx.BookID),
			tx.UserID, tx.BorrowedDate, tx.DueDate)
	}
	t.flush()
}

func renderDashboard(w io.Writer, d models.DashboardData) {
	headerColor.Fprintln(w, "Dashboard")
	t := newTable(w, "BORROWED", "RETURNED", "BOOKS", "STUDENTS")
	t.row(d.TotalBorrowedBooks, d.TotalReturnedBooks, d.TotalBooks, d.TotalStudents)
	t.flush()

	fmt.Fprintln(w)
	if len(d.OverdueBorrowers) == 0 {
		fmt.Fprintln(w, "No overdue borrowers.")
		return
	}
	headerColor.Fprintln(w, "Overdue borrowers")
	t = newTable(w, "TRANSACTION", "STUDENT")
	for _, o := range d.OverdueBorrowers {
		t.row(o.TransactionID, o.StudentName)
	}
	t.flush()
}
