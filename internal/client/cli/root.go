package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/libdesk/internal/client/config"
	"github.com/dmitrijs2005/libdesk/internal/client/session"
	"github.com/spf13/cobra"
)

// Execute builds the command tree, runs it with args and releases the App.
// Failures are reported on out; the returned error is for the exit status.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	var app *App
	defer func() {
		if app != nil {
			_ = app.Close()
		}
	}()

	root := newRootCommand(func(cmd *cobra.Command) (*App, error) {
		if app != nil {
			return app, nil
		}
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return nil, err
		}
		app, err = NewApp(cmd.Context(), cfg, in, out, errOut)
		return app, err
	})
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		report(out, err)
		if errors.Is(err, session.ErrLoginRequired) {
			alert(out, "Run `libdesk login` to start a session.")
		}
	}
	return err
}

type appFunc func(cmd *cobra.Command) (*App, error)

// run adapts an App method to a cobra RunE.
func run(getApp appFunc, fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}
		return fn(cmd.Context(), a, args)
	}
}

func newRootCommand(getApp appFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Library back office in the terminal",
		Long:          "libdesk manages the authors, books, students and borrow/return transactions of a library.\nWithout a subcommand it starts an interactive session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run(getApp, startREPL),
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start an interactive session",
			Args:  cobra.NoArgs,
			RunE:  run(getApp, startREPL),
		},
		&cobra.Command{
			Use:   "login",
			Short: "Log in and store the session",
			Args:  cobra.NoArgs,
			RunE: run(getApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Login(ctx)
			}),
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: run(getApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Logout(ctx)
			}),
		},
		newStatusCommand(getApp),
		&cobra.Command{
			Use:   "dashboard",
			Short: "Show counts and overdue borrowers",
			Args:  cobra.NoArgs,
			RunE: run(getApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Dashboard(ctx)
			}),
		},
		&cobra.Command{
			Use:     "issue",
			Aliases: []string{"issuing"},
			Short:   "Issue a book to a student (borrow transaction form)",
			Args:    cobra.NoArgs,
			RunE: run(getApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Issue(ctx)
			}),
		},
	)

	for _, name := range []string{"author", "book", "student", "transaction"} {
		root.AddCommand(newEntityCommand(getApp, name))
	}
	return root
}

func newStatusCommand(getApp appFunc) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the server and the logged-in user",
		Args:  cobra.NoArgs,
		RunE: run(getApp, func(ctx context.Context, a *App, _ []string) error {
			return a.Status(ctx, verify)
		}),
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check the stored token against the server")
	return cmd
}

func newEntityCommand(getApp appFunc, name string) *cobra.Command {
	action := func(verb string) func(*cobra.Command, []string) error {
		return run(getApp, func(ctx context.Context, a *App, args []string) error {
			return a.Entity(ctx, name, append([]string{verb}, args...))
		})
	}

	cmd := &cobra.Command{
		Use:   name,
		Short: "List and edit " + name + "s",
		Args:  cobra.NoArgs,
		RunE:  action("list"),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List " + name + "s",
			Args:    cobra.NoArgs,
			RunE:    action("list"),
		},
		&cobra.Command{
			Use:   "add [name=value...]",
			Short: "Create a " + name + "; prompts for fields when none are given",
			RunE:  action("add"),
		},
		&cobra.Command{
			Use:   "update <id> [name=value...]",
			Short: "Change fields of a " + name,
			Args:  cobra.MinimumNArgs(1),
			RunE:  action("update"),
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a " + name,
			Args:    cobra.ExactArgs(1),
			RunE:    action("delete"),
		},
	)
	return cmd
}

func startREPL(ctx context.Context, a *App, _ []string) error {
	fmt.Fprintln(a.out, "Welcome to libdesk (type 'help' for commands)")
	if !a.isLoggedIn(ctx) {
		if err := a.Login(ctx); err != nil {
			report(a.out, err)
		}
	}
	if a.isLoggedIn(ctx) {
		if err := a.Dashboard(ctx); err != nil {
			report(a.out, err)
		}
	}
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader, a.out)
	return nil
}
