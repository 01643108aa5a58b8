package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/libdesk/internal/client/client"
	"github.com/dmitrijs2005/libdesk/internal/client/models"
)

const LoginPath = "/login/"

type AuthRepository struct {
	api API
}

func NewAuthRepository(api API) *AuthRepository {
	return &AuthRepository{api: api}
}

// Login exchanges credentials for a token pair. The call is sent without a
// token and a 401 is never refreshed.
func (r *AuthRepository) Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := r.api.Do(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      LoginPath,
		Body:      creds,
		Result:    &out,
		Anonymous: true,
	})
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("login: %w", err)
	}
	return out, nil
}
