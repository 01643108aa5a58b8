package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/libdesk/internal/logging"
	"github.com/dmitrijs2005/libdesk/internal/server/config"
	"github.com/dmitrijs2005/libdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/libdesk/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// devServer runs the development backend on an in-memory database with the
// account admin/admin.
func devServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	m := repomanager.NewSQLiteRepositoryManager()
	db, err := m.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	users := services.NewUserService(db, m, cfg)
	_, _, err = users.EnsureUser(ctx, "admin", "admin")
	require.NoError(t, err)

	srv := httptest.NewServer(httpapi.NewServer(users, services.NewLibraryService(db, m), cfg.SecretKey, logging.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

type cliHarness struct {
	url   string
	state string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	return &cliHarness{url: devServer(t).URL + "/", state: filepath.Join(t.TempDir(), "state.db")}
}

// run executes one libdesk invocation with input on stdin and returns stdout.
func (h *cliHarness) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--server", h.url, "--state", h.state}, args...)
	err := Execute(context.Background(), full, strings.NewReader(input), &out, &errOut)
	return out.String(), err
}

func (h *cliHarness) mustRun(t *testing.T, input string, args ...string) string {
	t.Helper()
	out, err := h.run(t, input, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_EndToEnd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "book", "list")
	require.Error(t, err)
	assert.Contains(t, out, "libdesk login")

	out, err = h.run(t, "admin\nwrong\n", "login")
	require.Error(t, err)
	assert.Contains(t, out, "Login failed")

	out = h.mustRun(t, "admin\nadmin\n", "login")
	assert.Contains(t, out, "Logged in as admin.")

	out = h.mustRun(t, "", "status")
	assert.Contains(t, out, "admin (id 1)")

	h.mustRun(t, "", "author", "add", "Name=Frank Herbert")
	out = h.mustRun(t, "", "book", "add", "Title=Dune", "author=1", "Genre=Sci-Fi", "ISBN=123", "Quantity=1")
	assert.Contains(t, out, "book 1 created.")
	assert.Contains(t, out, "Frank Herbert")

	h.mustRun(t, "", "student", "add", "name=Bob", "email=bob@uni.edu", "contact_number=555", "department=CS")

	out = h.mustRun(t, "", "book", "update", "1", "Genre=Classic")
	assert.Contains(t, out, "Classic")
	assert.Contains(t, out, "Dune")

	out = h.mustRun(t, "", "transaction", "add", "student=1", "book=1", "due_date=2020-01-15")
	assert.Contains(t, out, "transaction 1 created.")
	assert.Contains(t, out, "borrow")

	out = h.mustRun(t, "", "book")
	assert.Regexp(t, `Dune\s+Frank Herbert\s+Classic\s+123\s+0`, out)

	out, err = h.run(t, "", "transaction", "add", "student=1", "book=1", "due_date=2020-01-15")
	require.Error(t, err)
	assert.Contains(t, out, "out of stock")

	out = h.mustRun(t, "", "dashboard")
	assert.Contains(t, out, "Overdue borrowers")
	assert.Contains(t, out, "Bob")

	out = h.mustRun(t, "", "logout")
	assert.Contains(t, out, "Logged out.")

	_, err = h.run(t, "", "dashboard")
	require.Error(t, err)
}

func TestCLI_REPL(t *testing.T) {
	h := newHarness(t)

	input := strings.Join([]string{
		"admin", "admin", // login prompt at startup
		"/author add Name=Le Guin",
		"author update 1",
		"Bio=Earthsea",
		"",
		"author",
		"bogus",
		"exit",
	}, "\n") + "\n"

	out := h.mustRun(t, input)

	assert.Contains(t, out, "Welcome to libdesk")
	assert.Contains(t, out, "Logged in as admin.")
	assert.Contains(t, out, "No overdue borrowers.")
	assert.Contains(t, out, "author 1 created.")
	assert.Contains(t, out, "author 1 updated.")
	assert.Regexp(t, `Le Guin\s+Earthsea`, out)
	assert.Contains(t, out, "libdesk (admin)> ")
}
