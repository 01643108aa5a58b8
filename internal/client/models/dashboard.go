package models

type Summary struct {
	TotalBorrowedBooks int `json:"total_borrowed_books"`
	TotalReturnedBooks int `json:"total_returned_books"`
	TotalBooks         int `json:"total_books"`
	TotalStudents      int `json:"total_students"`
}

type OverdueBorrower struct {
	TransactionID int64  `json:"transaction_id"`
	StudentName   string `json:"student_name"`
}

// DashboardData is the merged view of the summary and overdue endpoints.
type DashboardData struct {
	Summary
	OverdueBorrowers []OverdueBorrower `json:"overdue_borrowers"`
}
