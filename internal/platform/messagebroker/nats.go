package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// drainTimeout bounds how long Close waits for buffered publishes to flush.
const drainTimeout = 10 * time.Second

// NATSClient wraps a core NATS connection used for fire-and-forget publishing.
type NATSClient struct {
	conn   *nats.Conn
	logger *slog.Logger
	closed chan struct{}
}

// NewNATSClient connects to natsURL, e.g. "nats://localhost:4222".
func NewNATSClient(natsURL, appName string, logger *slog.Logger) (*NATSClient, error) {
	logger = logger.With("component", "nats")
	closed := make(chan struct{})
	nc, err := nats.Connect(natsURL,
		nats.Name(appName),
		nats.Timeout(5*time.Second),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(3),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DrainTimeout(drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
			close(closed)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSClient{conn: nc, logger: logger, closed: closed}, nil
}

// Publish sends data on subject. The context is checked before publishing;
// core NATS publishes are buffered and do not block.
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains pending publishes and blocks until the connection is closed or
// the drain timeout passes. Drain itself returns before the flush completes.
func (c *NATSClient) Close() {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed", "error", err)
		c.conn.Close()
		return
	}
	if !waitClosed(c.closed, drainTimeout+time.Second) {
		c.logger.Warn("NATS drain did not finish in time", "timeout", drainTimeout)
		c.conn.Close()
	}
}

// waitClosed reports whether closed was closed within timeout.
func waitClosed(closed <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-closed:
		return true
	case <-timer.C:
		return false
	}
}
