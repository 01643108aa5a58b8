// Package cli provides the libdesk command-line client.
//
// It wires configuration, the local state database, the API client, the
// session manager and one store per collection, then exposes them two ways:
// a cobra command tree for one-shot use (libdesk book list) and an
// interactive REPL (the default when no subcommand is given).
//
// Key features:
//   - Login / Logout / Status
//   - Dashboard: counts and overdue borrowers
//   - author, book, student, transaction: list, add, update, delete
//   - issue: the issuing form for a borrow transaction
//
// Protected commands go through the session guard; when the session is gone
// the REPL sends the user to the login prompt.
package cli
