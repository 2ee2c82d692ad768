package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const pingTimeout = 2 * time.Second

// Servers are the listeners Run drives.
type Servers struct {
	HTTP   *http.Server
	GRPC   *grpc.Server
	Health *health.Server

	HTTPListener net.Listener
	GRPCListener net.Listener
}

// Run serves HTTP and gRPC until ctx is cancelled or one of them fails,
// then shuts both down within timeout.
func Run(ctx context.Context, s Servers, timeout time.Duration, log *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http starting", slog.String("addr", s.HTTPListener.Addr().String()))
		if err := s.HTTP.Serve(s.HTTPListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", s.GRPCListener.Addr().String()))
		if err := s.GRPC.Serve(s.GRPCListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		s.Health.Shutdown()

		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.HTTP.Shutdown(stopCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}

		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopCtx.Done():
			log.Warn("graceful stop timeout, forcing stop")
			s.GRPC.Stop()
		case <-stopped:
		}
		return nil
	})

	return g.Wait()
}
