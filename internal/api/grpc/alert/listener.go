package alert

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/oshokin/alert-monitor/internal/logger"
)

// Listener hosts the status gRPC server.
type Listener struct {
	// address is the TCP listen address.
	address string
	// server answers status calls.
	server StatusServer
	// bound receives the resolved address once listening; may be nil.
	bound chan<- net.Addr
}

// NewListener creates a hosted status endpoint on address.
func NewListener(address string, server StatusServer) *Listener {
	return &Listener{
		address: address,
		server:  server,
	}
}

// NotifyBound makes Run send the resolved listen address on ch.
func (l *Listener) NotifyBound(ch chan<- net.Addr) {
	l.bound = ch
}

// Name identifies the endpoint as a hosted service.
func (l *Listener) Name() string {
	return "status-endpoint"
}

// Run serves until ctx is cancelled, then stops gracefully.
func (l *Listener) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, l.Name())

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", l.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.address, err)
	}

	return l.Serve(ctx, lis)
}

// Serve serves on an existing listener until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context, lis net.Listener) error {
	grpcServer := grpc.NewServer()
	RegisterStatusServer(grpcServer, l.server)

	logger.InfoKV(ctx, "Status endpoint listening", "listen_address", lis.Addr().String())

	if l.bound != nil {
		select {
		case l.bound <- lis.Addr():
		case <-ctx.Done():
			_ = lis.Close()

			return nil
		}
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Status endpoint stopped")

	return nil
}
