package tcpconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-modcontrol/internal/task"
	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

// Connection is a reconnecting TCP transport.
//
// A receive loop forwards every read to the subscribers. A periodic health
// check detects a dead socket and, when auto reconnect is enabled, replaces
// it; the health check and Send are serialised by the connection lock.
type Connection struct {
	cfg     *ConnectionConfig
	logger  logger.Logger
	opState transport.AtomicOpState
	subs    *transport.Subscribers
	metrics ConnectionMetrics

	// taskMgr owns the health check, recvMgr the receive loop of the current socket.
	taskMgr *task.Manager
	recvMgr *task.Manager

	healthTicker atomic.Pointer[time.Ticker]

	connMu sync.Mutex
	conn   net.Conn
	broken atomic.Bool
}

var _ transport.Transport = (*Connection)(nil)

// NewConnection creates a TCP connection. It is not opened until Connect is called.
func NewConnection(cfg *ConnectionConfig) *Connection {
	l := cfg.Logger().With("component", "tcpconn", "remote", cfg.Address())

	return &Connection{
		cfg:     cfg,
		logger:  l,
		subs:    transport.NewSubscribers(),
		taskMgr: task.NewManager(context.Background(), l),
		recvMgr: task.NewManager(context.Background(), l),
	}
}

// GetMetrics returns the metrics of the connection.
func (c *Connection) GetMetrics() *ConnectionMetrics {
	return &c.metrics
}

// IsConnected reports whether the socket is open and usable.
func (c *Connection) IsConnected() bool {
	return c.opState.IsOpened() && !c.broken.Load()
}

// Subscribe registers h for inbound data.
func (c *Connection) Subscribe(h transport.DataHandler) func() {
	return c.subs.Add(h)
}

// Connect dials the remote device and starts the receive loop and the health
// check. Connecting an open connection is a no-op; a broken one is torn down
// and dialled again.
func (c *Connection) Connect() error {
	if c.opState.IsOpened() {
		if !c.broken.Load() {
			return nil
		}

		c.logger.Info("connection is broken, reconnecting")
		c.Disconnect()
	}

	if !c.opState.ToOpening() {
		if c.opState.IsOpened() && !c.broken.Load() {
			return nil
		}

		return fmt.Errorf("tcpconn: connection is %s", c.opState.String())
	}

	conn, err := c.dial()
	if err != nil {
		c.opState.ToClosing()
		c.opState.ToClosed()

		return fmt.Errorf("tcpconn: connect to %s: %w", c.cfg.Address(), err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.broken.Store(false)

	if err := c.startReceiver(conn); err != nil {
		c.abortOpen()
		return fmt.Errorf("tcpconn: %w", err)
	}

	ticker, err := c.taskMgr.StartInterval("healthCheckTask", c.healthCheckTask, c.cfg.HealthCheckInterval(), false)
	if err != nil {
		c.abortOpen()
		return fmt.Errorf("tcpconn: %w", err)
	}
	c.healthTicker.Store(ticker)

	c.opState.ToOpened()
	c.logger.Info("connected")

	return nil
}

func (c *Connection) abortOpen() {
	c.opState.ToClosing()
	c.shutdown()
	c.opState.ToClosed()
}

// Disconnect stops the background tasks and closes the socket. Errors are
// ignored. Disconnecting a closed connection is a no-op.
func (c *Connection) Disconnect() {
	if !c.opState.ToClosing() {
		return
	}

	c.shutdown()
	c.opState.ToClosed()
	c.logger.Info("disconnected")
}

func (c *Connection) shutdown() {
	c.taskMgr.Stop()
	c.recvMgr.Stop()
	c.closeConn()
	c.taskMgr.Wait()
	c.recvMgr.Wait()
}

// Send writes data with the configured send timeout. Empty data is not sent.
func (c *Connection) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if !c.opState.IsOpened() {
		return transport.ErrNotConnected
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return transport.ErrNotConnected
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.SendTimeout()))
	n, err := c.conn.Write(data)
	_ = c.conn.SetWriteDeadline(time.Time{})
	c.metrics.addBytesSent(n)

	if err != nil {
		c.metrics.incSendErrCount()
		c.broken.Store(true)

		return fmt.Errorf("tcpconn: send: %w", err)
	}

	return nil
}

func (c *Connection) dial() (net.Conn, error) {
	idle, interval := c.cfg.KeepAlive()
	dialer := net.Dialer{
		Timeout: c.cfg.ConnectTimeout(),
		KeepAliveConfig: net.KeepAliveConfig{
			Enable:   true,
			Idle:     idle,
			Interval: interval,
			Count:    DefaultKeepAliveCount,
		},
	}

	return dialer.Dial("tcp", c.cfg.Address())
}

func (c *Connection) startReceiver(conn net.Conn) error {
	buf := make([]byte, c.cfg.ReadBufferSize())

	return c.recvMgr.StartReceiver("receiverTask", func() bool {
		return c.receiverTask(conn, buf)
	}, nil)
}

func (c *Connection) receiverTask(conn net.Conn, buf []byte) bool {
	n, err := conn.Read(buf)
	if n > 0 {
		c.metrics.addBytesReceived(n)
		c.subs.Publish(buf[:n])
	}

	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			c.logger.Debug("receive failed", "error", err)
		}
		c.broken.Store(true)

		return false
	}

	return true
}

func (c *Connection) closeConn() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	if tcpConn, ok := c.conn.(*net.TCPConn); ok {
		_ = tcpConn.SetLinger(0)
	}
	_ = c.conn.Close()
	c.conn = nil
}

// healthCheckTask runs on every health check tick.
func (c *Connection) healthCheckTask() bool {
	if !c.opState.IsOpened() {
		return true
	}

	if c.checkAlive() {
		return true
	}

	c.metrics.incHealthCheckFailCount()
	c.logger.Warn("health check failed, connection lost")
	c.broken.Store(true)

	c.recvMgr.Stop()
	c.closeConn()
	c.recvMgr.Wait()

	if !c.cfg.AutoReconnect() {
		return false
	}

	if err := c.reconnect(); err != nil {
		c.metrics.incReconnectErrCount()
		c.logger.Warn("reconnect failed", "error", err, "retry_in", c.cfg.ReconnectInterval())
		c.resetHealthTicker(c.cfg.ReconnectInterval())

		return true
	}

	c.metrics.incReconnectCount()
	c.logger.Info("reconnected")
	c.resetHealthTicker(c.cfg.HealthCheckInterval())

	return true
}

// checkAlive tests the socket with a zero-length write. A receive loop that
// ended also marks the connection dead.
func (c *Connection) checkAlive() bool {
	if c.broken.Load() {
		return false
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return false
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.SendTimeout()))
	_, err := c.conn.Write(nil)
	_ = c.conn.SetWriteDeadline(time.Time{})

	return err == nil
}

func (c *Connection) reconnect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}

	c.connMu.Lock()
	if !c.opState.IsOpened() {
		c.connMu.Unlock()
		_ = conn.Close()

		return transport.ErrClosed
	}
	c.conn = conn
	c.connMu.Unlock()

	c.broken.Store(false)

	return c.startReceiver(conn)
}

func (c *Connection) resetHealthTicker(d time.Duration) {
	if ticker := c.healthTicker.Load(); ticker != nil {
		ticker.Reset(d)
	}
}
