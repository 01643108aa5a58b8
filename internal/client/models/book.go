package models

// Book is a title held by the library. Quantity is the number of copies.
type Book struct {
	BookID   int64  `json:"BookId"`
	Title    string `json:"Title"`
	AuthorID int64  `json:"author"`
	Genre    string `json:"Genre"`
	ISBN     string `json:"ISBN"`
	Quantity int    `json:"Quantity"`
}

func (b Book) ID() int64 { return b.BookID }

type BookInput struct {
	Title    string `json:"Title" validate:"required"`
	AuthorID int64  `json:"author" validate:"required,gt=0"`
	Genre    string `json:"Genre" validate:"required"`
	ISBN     string `json:"ISBN" validate:"required"`
	Quantity int    `json:"Quantity" validate:"gte=0"`
}

type BookPatch struct {
	Title    *string `json:"Title,omitempty" validate:"omitempty,min=1"`
	AuthorID *int64  `json:"author,omitempty" validate:"omitempty,gt=0"`
	Genre    *string `json:"Genre,omitempty" validate:"omitempty,min=1"`
	ISBN     *string `json:"ISBN,omitempty" validate:"omitempty,min=1"`
	Quantity *int    `json:"Quantity,omitempty" validate:"omitempty,gte=0"`
}

func (p BookPatch) Empty() bool {
	return p.Title == nil && p.AuthorID == nil && p.Genre == nil && p.ISBN == nil && p.Quantity == nil
}
