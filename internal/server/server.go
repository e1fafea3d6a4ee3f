// Package server runs the HTTP server hosting the lock routes.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Config describes the address the server listens on.
type Config struct {
	IP   string
	Port string
}

// Start begins serving and blocks until the server stops. A SIGINT or
// SIGTERM drains in-flight requests for up to ten seconds before the
// call returns.
func Start(log zerolog.Logger, cfg Config, handler http.Handler) error {
	if err := checkValidPort(cfg.Port); err != nil {
		return err
	}

	server := &http.Server{
		Handler: handler,
		Addr:    cfg.IP + ":" + cfg.Port,
	}

	go gracefulShutdown(log, server)

	log.Info().Str("addr", server.Addr).Msg("starting server")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// gracefulShutdown shuts down the server on getting a ^C signal.
func gracefulShutdown(log zerolog.Logger, server *http.Server) {
	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal.
	<-interruptChan

	// Create a deadline to wait for currently serving items.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown did not drain cleanly")
	}

	log.Info().Msg("shutting down")
}

func checkValidPort(port string) error {
	portInt, err := strconv.Atoi(port)
	if err != nil {
		return err
	}
	if portInt <= 0 || portInt > 65535 {
		return errors.New("port number outside the range 1-65535")
	}
	return nil
}
