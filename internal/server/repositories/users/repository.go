// Package users declares and implements the storage of librarian accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/libdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
