package models

// Author is a book author.
type Author struct {
	AuthorID int64  `json:"AuthorID"`
	Name     string `json:"Name"`
	Bio      string `json:"Bio"`
}

func (a Author) ID() int64 { return a.AuthorID }

type AuthorInput struct {
	Name string `json:"Name" validate:"required"`
	Bio  string `json:"Bio"`
}

type AuthorPatch struct {
	Name *string `json:"Name,omitempty" validate:"omitempty,min=1"`
	Bio  *string `json:"Bio,omitempty"`
}

func (p AuthorPatch) Empty() bool {
	return p.Name == nil && p.Bio == nil
}
