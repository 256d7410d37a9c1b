/*
Webapi is the executable for the main web server.
It wires the music catalogue's feature packages around a shared SQLite store
and serves them over a single HTTP server.

Usage:

	webapi [flags]

Flags and configurations are handled automatically by the code in `load-configuration.go`.

Return values (exit codes):

	0
		The program ended successfully (no errors, stopped by signal)

	> 0
		The program ended due to an error

Note that this program will create the database schema on first run, when the
configured file doesn't exist yet.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	"github.com/DBP-2025-2/music-app-sub000/pkg/charts"
	"github.com/DBP-2025-2/music-app-sub000/pkg/follows"
	"github.com/DBP-2025-2/music-app-sub000/pkg/playlists"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/DBP-2025-2/music-app-sub000/pkg/songs"
	"github.com/DBP-2025-2/music-app-sub000/pkg/storage/sqlite"
	"github.com/DBP-2025-2/music-app-sub000/pkg/users"
	"github.com/ardanlabs/conf"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

// run executes the program. The body of this function should perform the following steps:
// * reads the configuration
// * creates and configure the logger
// * connects to any external resources (like databases, authenticators, etc.)
// * registers the feature packages' routes
// * starts the principal web server
// * waits for any termination event: SIGTERM signal (UNIX), non-recoverable server error, etc.
// * closes the principal web server
func run() error {
	// Load Configuration and defaults
	cfg, err := loadConfiguration()
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	// Init logging
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("application initializing")

	// initialise database before registering handlers for an immediate exit in case of issues
	storage, err := sqlite.New(logger, cfg.DB.Filename)
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer storage.Close()

	tokenManager, err := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		logger.WithError(err).Error("error initialising the token manager")
		return fmt.Errorf("error while initialising the token manager: %w", err)
	}

	// Start (main) API server
	logger.Info("initializing API server")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	e, err := rest.New(rest.Config{
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("error creating the API server instance")
		return fmt.Errorf("creating the API server instance: %w", err)
	}

	e.Use(e.RequestLogging())

	// setup repositories and handlers
	var authRepository = auth.NewRepository(storage.Connection)
	var usersRepository = users.NewRepository(storage.Connection)
	var followsRepository = follows.NewRepository(storage.Connection)
	var playlistsRepository = playlists.NewRepository(storage.Connection)
	var chartsRepository = charts.NewRepository(storage.Connection)
	var songsRepository = songs.NewRepository(storage.Connection)

	auth.RegisterHandlers(e, authRepository, tokenManager, logger)
	users.RegisterHandlers(e, usersRepository, authRepository, tokenManager, logger)
	follows.RegisterHandlers(e, followsRepository, usersRepository, authRepository, tokenManager, logger)
	playlists.RegisterHandlers(e, playlistsRepository, followsRepository, authRepository, tokenManager, logger)
	charts.RegisterHandlers(e, chartsRepository, tokenManager, logger)
	songs.RegisterHandlers(e, songsRepository, authRepository, tokenManager, logger)

	e.ServeFiles("/static/*filepath", http.Dir("static"))

	// Apply CORS policy
	handler := applyCORSHandler(e.Handler())

	// create the API server
	server := http.Server{
		Addr:              cfg.Web.APIHost,
		Handler:           handler,
		ReadTimeout:       cfg.Web.ReadTimeout,
		ReadHeaderTimeout: cfg.Web.ReadTimeout,
		WriteTimeout:      cfg.Web.WriteTimeout,
	}

	// Start the service listening for requests in a separate goroutine
	go func() {
		logger.Infof("API listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
		logger.Infof("stopping API server")
	}()

	// Waiting for shutdown signal or POSIX signals
	select {
	case err := <-serverErrors:
		// Non-recoverable server error
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("signal %v received, start shutdown", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and load shed.
		err = server.Shutdown(ctx)
		if err != nil {
			logger.WithError(err).Warning("error during graceful shutdown of HTTP server")
			err = server.Close()
		}

		if err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
