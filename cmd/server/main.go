// Command libdesk-server runs the development backend the libdesk CLI talks to.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/libdesk/internal/logging"
	"github.com/dmitrijs2005/libdesk/internal/server"
	"github.com/dmitrijs2005/libdesk/internal/server/config"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("libdesk-server", pflag.ContinueOnError)
	config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
