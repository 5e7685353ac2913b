// Package wsconn provides a transport to devices reached through a
// WebSocket serial proxy. Each binary message carries raw line bytes.
package wsconn

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arloliu/go-modcontrol/internal/task"
	"github.com/arloliu/go-modcontrol/logger"
	"github.com/arloliu/go-modcontrol/transport"
)

// Connection is a WebSocket transport.
type Connection struct {
	cfg     *Config
	logger  logger.Logger
	opState transport.AtomicOpState
	subs    *transport.Subscribers
	taskMgr *task.Manager

	mu     sync.Mutex
	conn   *websocket.Conn
	broken atomic.Bool
}

var _ transport.Transport = (*Connection)(nil)

// NewConnection creates a WebSocket connection. The handshake is done by Connect.
func NewConnection(cfg *Config) *Connection {
	l := cfg.logger.With("component", "wsconn", "url", cfg.url)

	return &Connection{
		cfg:     cfg,
		logger:  l,
		subs:    transport.NewSubscribers(),
		taskMgr: task.NewManager(context.Background(), l),
	}
}

// IsConnected reports whether the connection is open and has not failed.
func (c *Connection) IsConnected() bool {
	return c.opState.IsOpened() && !c.broken.Load()
}

// Subscribe registers h for inbound data.
func (c *Connection) Subscribe(h transport.DataHandler) func() {
	return c.subs.Add(h)
}

// Connect performs the WebSocket handshake and starts the receive loop. A
// broken connection is closed and dialled again.
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

		return fmt.Errorf("wsconn: connection is %s", c.opState.String())
	}

	conn, err := c.dial()
	if err != nil {
		c.opState.ToClosing()
		c.opState.ToClosed()

		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.broken.Store(false)

	if err := c.taskMgr.StartReceiver("receiverTask", func() bool {
		return c.receiverTask(conn)
	}, nil); err != nil {
		c.opState.ToClosing()
		c.shutdown()
		c.opState.ToClosed()

		return fmt.Errorf("wsconn: %w", err)
	}

	c.opState.ToOpened()
	c.logger.Info("websocket connected")

	return nil
}

func (c *Connection) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.handshakeTimeout}
	if strings.HasPrefix(c.cfg.url, "wss://") {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: c.cfg.skipTLSVerify} //nolint:gosec
	}

	headers := http.Header{}
	if c.cfg.username != "" && c.cfg.password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(c.cfg.username + ":" + c.cfg.password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.handshakeTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, c.cfg.url, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("wsconn: handshake failed (HTTP %d): %w", resp.StatusCode, err)
		}

		return nil, fmt.Errorf("wsconn: dial: %w", err)
	}

	return conn, nil
}

// Disconnect sends a close message, if possible, and closes the connection.
func (c *Connection) Disconnect() {
	if !c.opState.ToClosing() {
		return
	}

	c.shutdown()
	c.opState.ToClosed()
	c.logger.Info("websocket disconnected")
}

func (c *Connection) shutdown() {
	c.taskMgr.Stop()

	c.mu.Lock()
	if c.conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.taskMgr.Wait()
}

// Send writes data as one binary message. Empty data is not sent.
func (c *Connection) Send(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.opState.IsOpened() {
		return transport.ErrNotConnected
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.broken.Store(true)
		return fmt.Errorf("wsconn: send: %w", err)
	}

	return nil
}

func (c *Connection) receiverTask(conn *websocket.Conn) bool {
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, websocket.ErrCloseSent) &&
			!strings.Contains(err.Error(), "use of closed network connection") {
			c.logger.Warn("websocket read failed", "error", err)
		}
		c.broken.Store(true)

		return false
	}

	// only binary messages carry line data
	if messageType == websocket.BinaryMessage && len(data) > 0 {
		c.subs.Publish(data)
	}

	return true
}
