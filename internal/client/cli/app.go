package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/client/client"
	"github.com/dmitrijs2005/libdesk/internal/client/config"
	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/libdesk/internal/client/repositories/remote"
	"github.com/dmitrijs2005/libdesk/internal/client/session"
	"github.com/dmitrijs2005/libdesk/internal/client/store"
	"github.com/dmitrijs2005/libdesk/internal/client/tokenstore"
	"github.com/dmitrijs2005/libdesk/internal/logging"
)

type (
	authorStore      = store.Store[models.Author, models.AuthorInput, models.AuthorPatch]
	bookStore        = store.Store[models.Book, models.BookInput, models.BookPatch]
	studentStore     = store.Store[models.Student, models.StudentInput, models.StudentPatch]
	transactionStore = store.Store[models.Transaction, models.TransactionInput, models.TransactionPatch]
)

// App is the view layer: it owns the stores and renders them.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *session.Manager

	authors      *authorStore
	books        *bookStore
	students     *studentStore
	transactions *transactionStore
	dashboard    *store.DashboardStore

	entities map[string]entity

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp opens the state database and wires the client stack. Diagnostics
// go to errOut, user-facing output to out.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	log := logging.New(errOut, cfg.LogLevel, cfg.LogFormat)

	db, err := client.InitDatabase(ctx, cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	tokens := tokenstore.NewSQLStore(metadata.NewSQLiteRepository(db), log)
	api := client.New(cfg.ServerURL, tokens, log, client.WithTimeout(cfg.Timeout))

	sess := session.NewManager(remote.NewAuthRepository(api), remote.NewDashboardRepository(api), tokens, log)
	api.OnSessionExpired(sess.Expired)

	a := &App{
		config:  cfg,
		log:     log,
		db:      db,
		session: sess,

		authors:      store.New[models.Author, models.AuthorInput, models.AuthorPatch]("author", remote.NewAuthorRepository(api), log),
		books:        store.New[models.Book, models.BookInput, models.BookPatch]("book", remote.NewBookRepository(api), log),
		students:     store.New[models.Student, models.StudentInput, models.StudentPatch]("student", remote.NewStudentRepository(api), log),
		transactions: store.New[models.Transaction, models.TransactionInput, models.TransactionPatch]("transaction", remote.NewTransactionRepository(api), log),
		dashboard:    store.NewDashboardStore(remote.NewDashboardRepository(api), log),

		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}
	a.entities = a.newEntities()
	return a, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.session.IsAuthenticated(ctx)
}

// getStatus is the REPL prompt decoration: "(alice)" or "".
func (a *App) getStatus(ctx context.Context) string {
	if u, ok := a.session.Current(ctx); ok {
		return fmt.Sprintf("(%s)", u.UserName)
	}
	if a.isLoggedIn(ctx) {
		return "(logged in)"
	}
	return ""
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	return a.session.Login(ctx, username, password, func() {
		success(a.out, "Logged in as %s.", username)
	})
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	success(a.out, "Logged out.")
	return nil
}

// Status prints the server and the session; with verify the stored token is
// checked against the server.
func (a *App) Status(ctx context.Context, verify bool) error {
	fmt.Fprintf(a.out, "Server: %s\n", a.config.ServerURL)

	u, ok := a.session.Current(ctx)
	switch {
	case ok:
		fmt.Fprintf(a.out, "User:   %s (id %d)\n", u.UserName, u.ID)
	case a.isLoggedIn(ctx):
		fmt.Fprintln(a.out, "User:   unknown (token stored)")
	default:
		fmt.Fprintln(a.out, "User:   not logged in")
		return nil
	}

	if !verify {
		return nil
	}
	if err := a.session.Verify(ctx); err != nil {
		return err
	}
	success(a.out, "Session is valid.")
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	return a.session.Guard(func(ctx context.Context) error {
		a.dashboard.Load(ctx)
		if !a.dashboard.Loaded() {
			return errNotLoaded("dashboard")
		}
		renderDashboard(a.out, a.dashboard.Data())
		return nil
	})(ctx)
}

// Entity runs "<name> [list|add|update|delete] args..." for one collection.
func (a *App) Entity(ctx context.Context, name string, args []string) error {
	e, ok := a.entities[name]
	if !ok {
		return fmt.Errorf("unknown collection %q", name)
	}

	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	var fn func(ctx context.Context, args []string) error
	switch action {
	case "list", "ls":
		fn = e.List
	case "add":
		fn = e.Add
	case "update":
		fn = e.Update
	case "delete", "rm":
		fn = e.Delete
	default:
		return fmt.Errorf("%w: %s %s (want list, add, update or delete)", errUnknownAction, name, action)
	}

	return a.session.Guard(func(ctx context.Context) error {
		return fn(ctx, args)
	})(ctx)
}

// Issue runs the issuing form: a borrow transaction dated today on behalf of
// the logged-in user.
func (a *App) Issue(ctx context.Context) error {
	return a.Entity(ctx, "transaction", []string{"add"})
}

var errUnknownAction = errors.New("unknown action")

func errNotLoaded(what string) error {
	return fmt.Errorf("could not load %s, see the log for details", what)
}
