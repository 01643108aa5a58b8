// Package services contains the business logic of the development server:
// librarian login and token refresh, and the circulation rules applied when
// transactions are recorded.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/server/auth"
	"github.com/dmitrijs2005/libdesk/internal/server/config"
	"github.com/dmitrijs2005/libdesk/internal/server/models"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login checks the password and issues an access token plus a stored
// refresh token. Unknown users and wrong passwords both yield
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, *models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error searching user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken trades a stored, unexpired refresh token for a new access
// token. The refresh token stays valid until it expires.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			return "", fmt.Errorf("error deleting refresh token: %w", err)
		}
		return "", common.ErrRefreshTokenExpired
	}

	return s.generateAccessToken(token.UserID)
}

// EnsureUser creates userName with password unless it already exists.
func (s *UserService) EnsureUser(ctx context.Context, userName, password string) (*models.User, bool, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("error hashing password: %w", err)
	}
	user, err = repo.Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		return nil, false, fmt.Errorf("error creating user: %w", err)
	}
	return user, true, nil
}

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	err = s.repomanager.RefreshTokens(s.db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
