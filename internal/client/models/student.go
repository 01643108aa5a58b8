package models

type Student struct {
	StudentID     int64  `json:"student_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Department    string `json:"department"`
}

func (s Student) ID() int64 { return s.StudentID }

type StudentInput struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Department    string `json:"department" validate:"required"`
}

type StudentPatch struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	ContactNumber *string `json:"contact_number,omitempty" validate:"omitempty,min=1"`
	Department    *string `json:"department,omitempty" validate:"omitempty,min=1"`
}

func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.ContactNumber == nil && p.Department == nil
}
