// Package session tracks who is logged in.
//
// The session is authenticated exactly when an access token is stored. The
// flag is optimistic: a stored token is not checked against the server until
// a request (or Verify) uses it.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/libdesk/internal/client/client"
	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/client/tokenstore"
	"github.com/dmitrijs2005/libdesk/internal/logging"
)

var (
	ErrLoginFailed   = errors.New("login failed, please check your credentials")
	ErrLoginRequired = errors.New("login required")
)

// Authenticator performs the login exchange.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error)
}

// Prober is any cheap authenticated call used to check a stored token.
type Prober interface {
	Summary(ctx context.Context) (models.Summary, error)
}

type Manager struct {
	auth   Authenticator
	probe  Prober
	tokens tokenstore.Store
	log    logging.Logger
}

func NewManager(auth Authenticator, probe Prober, tokens tokenstore.Store, log logging.Logger) *Manager {
	return &Manager{
		auth:   auth,
		probe:  probe,
		tokens: tokens,
		log:    log.With("component", "session"),
	}
}

// Login authenticates and on success stores the token pair, records the user
// and calls onSuccess (which may be nil). Any failure leaves the session
// anonymous, even if one existed before, and returns an error matching
// ErrLoginFailed.
func (m *Manager) Login(ctx context.Context, username, password string, onSuccess func()) error {
	creds := models.Credentials{UserName: username, Password: password}
	if err := models.Validate(creds); err != nil {
		m.reset(ctx)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	resp, err := m.auth.Login(ctx, creds)
	if err == nil && resp.AccessToken == "" {
		err = errors.New("no access token in response")
	}
	if err != nil {
		m.log.Warn(ctx, "login failed", "user", username, "error", err)
		m.reset(ctx)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	m.tokens.Save(ctx, resp.AccessToken, resp.RefreshToken)
	m.tokens.SaveUsers(ctx, []models.User{resp.User})
	m.log.Info(ctx, "logged in", "user", resp.UserName)

	if onSuccess != nil {
		onSuccess()
	}
	return nil
}

// Logout clears tokens and users whatever their state.
func (m *Manager) Logout(ctx context.Context) {
	m.reset(ctx)
	m.log.Info(ctx, "logged out")
}

func (m *Manager) reset(ctx context.Context) {
	m.tokens.Clear(ctx)
	m.tokens.ClearUsers(ctx)
}

func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.tokens.AccessToken(ctx) != ""
}

func (m *Manager) Users(ctx context.Context) []models.User {
	return m.tokens.Users(ctx)
}

// Current returns the logged-in user, if any.
func (m *Manager) Current(ctx context.Context) (models.User, bool) {
	if !m.IsAuthenticated(ctx) {
		return models.User{}, false
	}
	users := m.tokens.Users(ctx)
	if len(users) == 0 {
		return models.User{}, false
	}
	return users[0], true
}

// Expired is the client's session-expired hook: the tokens are gone, so the
// identity goes too.
func (m *Manager) Expired(ctx context.Context) {
	m.log.Warn(ctx, "session expired")
	m.tokens.ClearUsers(ctx)
}

// Guard wraps a protected action. Unauthenticated callers get ErrLoginRequired
// and fn is not run; a session that expires during fn also reports
// ErrLoginRequired.
func (m *Manager) Guard(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if !m.IsAuthenticated(ctx) {
			return ErrLoginRequired
		}
		err := fn(ctx)
		if err != nil && errors.Is(err, client.ErrUnauthorized) && !m.IsAuthenticated(ctx) {
			return fmt.Errorf("%w: %w", ErrLoginRequired, err)
		}
		return err
	}
}

// Verify checks the stored token with one authenticated request.
func (m *Manager) Verify(ctx context.Context) error {
	if !m.IsAuthenticated(ctx) {
		return ErrLoginRequired
	}
	if _, err := m.probe.Summary(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", ErrLoginRequired, err)
		}
		return err
	}
	return nil
}
