package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// App encapsulates the application lifecycle. Infrastructure clients are
// closed by the cleanup returned alongside it from DI, after Run returns.
type App struct {
	httpServer      *xhttp.Server
	log             *applogger.Logger
	shutdownTimeout time.Duration
	signals         []os.Signal
}

// New creates an App around a configured HTTP server.
func New(srv *xhttp.Server, l *applogger.Logger, shutdownTimeout time.Duration) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		httpServer:      srv,
		log:             l,
		shutdownTimeout: shutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), a.signals...)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops accepting requests and drains in-flight ones.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
