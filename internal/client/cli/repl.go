package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/client/session"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context, verify bool) error
	Dashboard(ctx context.Context) error
	Entity(ctx context.Context, name string, args []string) error
	Issue(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, status, exit"
	helpLoggedIn  = "Available commands: dashboard, author, book, student, transaction, issue, status, logout, exit\n" +
		"Collections take an action: <collection> [list|add|update <id> [name=value...]|delete <id>]"
)

// runREPL reads commands line by line from reader until EOF, "exit" or "quit".
//
// Commands mirror the screens of the back office and may be written with a
// leading slash (/book list):
//
//	help                                    show available commands
//	login | logout | status [verify]
//	dashboard                               counts and overdue borrowers
//	author|book|student|transaction [...]   list, add, update, delete
//	issue | issuing                         issuing form
//	exit | quit                             leave the program
//
// A protected command run without a session sends the user to the login
// prompt; after a successful login the dashboard is shown. Other failures
// are printed as alerts and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "libdesk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.TrimPrefix(parts[0], "/"), parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpAnonymous)
			}

		case "login":
			if cmdErr = a.Login(ctx); cmdErr == nil {
				cmdErr = a.Dashboard(ctx)
			}

		case "logout":
			cmdErr = a.Logout(ctx)

		case "status":
			cmdErr = a.Status(ctx, len(args) > 0 && args[0] == "verify")

		case "dashboard":
			cmdErr = a.Dashboard(ctx)

		case "author", "book", "student", "transaction":
			cmdErr = a.Entity(ctx, cmd, args)

		case "issue", "issuing":
			cmdErr = a.Issue(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr == nil {
			continue
		}
		report(out, cmdErr)
		if errors.Is(cmdErr, session.ErrLoginRequired) {
			if err := a.Login(ctx); err != nil {
				report(out, err)
			} else if err := a.Dashboard(ctx); err != nil {
				report(out, err)
			}
		}
	}
}

// report prints err as an alert, phrased for the user.
func report(w io.Writer, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, session.ErrLoginRequired):
		alert(w, "Please log in first.")
	case errors.Is(err, session.ErrLoginFailed):
		alert(w, "Login failed, please check your credentials.")
	case errors.As(err, &verr):
		alert(w, "%s", verr.Error())
	default:
		alert(w, "%s", err.Error())
	}
}
