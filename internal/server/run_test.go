package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon-api/internal/logger"
)

func TestRunStopsOnCancel(t *testing.T) {
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	a := newApp(t, roomy, roomy)
	gs, hs := NewGRPC()
	srv := Servers{
		HTTP:         &http.Server{Handler: a.router, ReadHeaderTimeout: time.Second},
		GRPC:         gs,
		Health:       hs,
		HTTPListener: httpLis,
		GRPCListener: grpcLis,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, 2*time.Second, logger.Discard()) }()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + httpLis.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
