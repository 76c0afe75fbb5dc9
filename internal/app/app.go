// Package app wires the production server together: in-memory storage, the
// console logger, the runtime metrics source, and the HTTP transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	server "ember-mc/server"
	"ember-mc/server/internal/metrics"
	servernet "ember-mc/server/internal/net"
	"ember-mc/server/logging"
	"ember-mc/server/storage"
)

func Run(ctx context.Context) error {
	store := storage.NewMemory()
	console := logging.New(os.Stdout, store)

	srv := server.New(server.DefaultConfig(), store, console, metrics.Runtime{})
	srv.Start()

	handler := servernet.NewHTTPHandler(srv, servernet.HTTPHandlerConfig{Console: console})

	addr := ":8080"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}
	httpSrv := &http.Server{Addr: addr, Handler: handler}
	console.Infof("Server listening on %s", addr)

	go func() {
		<-ctx.Done()
		srv.ExecuteCommand("stop")
		httpSrv.Shutdown(context.Background())
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
