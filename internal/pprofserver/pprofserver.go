package pprofserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/myrjola/casebook/internal/errors"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Addr returns the ipv6 loopback address for port.
func Addr(port string) string {
	return fmt.Sprintf("[::1]:%s", port)
}

// Launch starts a standard pprof server at ipv6 loopback address ::1 and given port. The server shuts down when ctx
// is done.
func Launch(ctx context.Context, port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	Handle(mux)
	srv := &http.Server{
		Addr:              Addr(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // loopback only
	}
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = errors.Wrap(err, "pprof server")
			logger.LogAttrs(ctx, slog.LevelError, "pprof server failed", errors.SlogError(err))
		}
	}()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			err = errors.Wrap(err, "shutdown pprof server")
			logger.LogAttrs(ctx, slog.LevelError, "pprof shutdown failed", errors.SlogError(err))
		}
	}()
}
