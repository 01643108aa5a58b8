// Package common contains constants and sentinel errors shared by the libdesk
// client and the development server.
package common

const (
	// AuthorizationHeader carries "Bearer <access token>" on API requests.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	// RequestIDHeader correlates client log lines with server log lines.
	RequestIDHeader = "X-Request-ID"
)

// Keys of the persisted client state.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UsersKey        = "users"
)
