package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/common"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decode(r, &creds); err != nil {
		s.handleError(w, r, err)
		return
	}

	pair, user, err := s.users.Login(r.Context(), creds.UserName, creds.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Warn(r.Context(), "login rejected", "user", creds.UserName)
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: models.User{
			ID:        user.ID,
			UserName:  user.UserName,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	access, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrRefreshTokenExpired) {
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
}
