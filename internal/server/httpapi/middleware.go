package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserID returns the id of the authenticated user, or 0 outside requireAuth.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// requireAuth rejects requests without a valid bearer access token. The
// detail tells an expired token apart so clients know to refresh.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.secretKey)
		if err != nil {
			detail := common.ErrInvalidToken.Error()
			if errors.Is(err, common.ErrTokenExpired) {
				detail = common.ErrTokenExpired.Error()
			}
			writeDetail(w, http.StatusUnauthorized, detail)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
