// Package client contains the client-side plumbing of libdesk.
//
// # Overview
//
// The package provides:
//  1. Client, the single outbound gateway to the library back-office API,
//     built on resty. It attaches the stored access token to every request
//     and, when a request is rejected with 401, performs exactly one silent
//     refresh-and-retry before giving up.
//  2. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     client state database that holds tokens between runs.
//
// # Token refresh
//
// Concurrent requests that fail with 401 share a single refresh exchange
// (singleflight). A request that is already a retry never triggers another
// refresh: a second 401 is returned to the caller. Whenever a 401 cannot be
// recovered the stored tokens are cleared and the session-expired hook runs.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError, which unwraps to one of the
// sentinel errors (ErrUnauthorized, ErrNotFound, ErrBadRequest,
// ErrUnavailable) so callers can match with errors.Is. Transport failures
// wrap ErrUnavailable.
package client
