package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// Serve runs h on addr until ctx is cancelled, then shuts the server down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger ports.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, h, logger)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler, logger ports.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if logger != nil {
		logger.Info(ctx, "http api listening", ports.F("addr", ln.Addr().String()))
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}
