package library

import (
	"context"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
)

type StudentRepository struct {
	db dbx.DBTX
}

func NewStudentRepository(db dbx.DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, name, email, contact_number, department`

func scanStudent(s scanner) (models.Student, error) {
	var st models.Student
	if err := s.Scan(&st.StudentID, &st.Name, &st.Email, &st.ContactNumber, &st.Department); err != nil {
		return models.Student{}, dbError(err)
	}
	return st, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	return collect(rows, err, scanStudent)
}

func (r *StudentRepository) Get(ctx context.Context, id int64) (models.Student, error) {
	return scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
}

func (r *StudentRepository) Create(ctx context.Context, in models.StudentInput) (models.Student, error) {
	query := `
		INSERT INTO students (name, email, contact_number, department)
		VALUES (?, ?, ?, ?)
		RETURNING ` + studentColumns
	return scanStudent(r.db.QueryRowContext(ctx, query, in.Name, in.Email, in.ContactNumber, in.Department))
}

func (r *StudentRepository) Update(ctx context.Context, id int64, p models.StudentPatch) (models.Student, error) {
	query := `
		UPDATE students SET
			name           = COALESCE(?, name),
			email          = COALESCE(?, email),
			contact_number = COALESCE(?, contact_number),
			department     = COALESCE(?, department)
		WHERE id = ?
		RETURNING ` + studentColumns
	return scanStudent(r.db.QueryRowContext(ctx, query, p.Name, p.Email, p.ContactNumber, p.Department, id))
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id))
}
