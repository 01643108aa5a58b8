// Package httpapi exposes the development server over REST/JSON: login and
// token refresh, CRUD for authors, books, students and transactions, and the
// dashboard aggregates. Everything except login and refresh needs a bearer
// access token.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/logging"
	servermodels "github.com/dmitrijs2005/libdesk/internal/server/models"
	"github.com/dmitrijs2005/libdesk/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// UserService is the part of services.UserService the API needs.
type UserService interface {
	Login(ctx context.Context, userName, password string) (*services.TokenPair, *servermodels.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

type Server struct {
	users     UserService
	library   *services.LibraryService
	secretKey []byte
	logger    logging.Logger
	router    *chi.Mux

	corsOrigins  []string
	loginLimiter *keyedLimiter
}

type Option func(*Server)

// WithCORS lets browser front ends served from origins call the API.
func WithCORS(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithLoginRateLimit allows perMinute login and refresh attempts per client
// address, with bursts up to burst. Zero disables the limit.
func WithLoginRateLimit(perMinute, burst int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.loginLimiter = newKeyedLimiter(perMinute, time.Minute, max(burst, 1))
		}
	}
}

func NewServer(users UserService, library *services.LibraryService, secretKey string, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		users:     users,
		library:   library,
		secretKey: []byte(secretKey),
		logger:    logger.With("component", "httpapi"),
		router:    chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", common.RequestIDHeader},
			ExposedHeaders:   []string{common.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Group(func(r chi.Router) {
		if s.loginLimiter != nil {
			r.Use(s.limitByIP(s.loginLimiter))
		}
		r.Post("/login/", s.handleLogin)
		r.Post("/token/refresh", s.handleRefresh)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		mountResource[models.Author, models.AuthorInput, models.AuthorPatch](r, "/author", s, s.library.Authors())
		mountResource[models.Book, models.BookInput, models.BookPatch](r, "/book", s, s.library.Books())
		mountResource[models.Student, models.StudentInput, models.StudentPatch](r, "/student", s, s.library.Students())
		mountResource[models.Transaction, models.TransactionInput, models.TransactionPatch](r, "/transaction", s, s.library.Transactions())

		r.Get("/dashboard/summary/", s.handleSummary)
		r.Get("/dashboard/overdue/", s.handleOverdue)
	})
}
